// Package integrity provides action hash and signing helpers used to protect
// the battle log's tamper-evident chain.
//
// Why this package exists:
// - It ensures each stored action carries a deterministic hash input.
// - It links actions into a chain so replay order and authenticity can be verified.
// - It isolates cryptographic details from higher-level storage and replay code.
package integrity
