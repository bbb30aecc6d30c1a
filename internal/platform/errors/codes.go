// Package errors provides structured error handling for the arena services.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Battle errors
	CodeBattleFinished       Code = "BATTLE_FINISHED"
	CodeBattleActorNotFound  Code = "BATTLE_ACTOR_NOT_FOUND"
	CodeBattleTargetNotFound Code = "BATTLE_TARGET_NOT_FOUND"
	CodeBattleInvalidAction  Code = "BATTLE_INVALID_ACTION"
	CodeBattleEmptyRoster    Code = "BATTLE_EMPTY_ROSTER"

	// Session errors
	CodeSessionEmptyID       Code = "SESSION_EMPTY_ID"
	CodeSessionEmptySeed     Code = "SESSION_EMPTY_SEED"
	CodeSessionInvalidType   Code = "SESSION_INVALID_TYPE"
	CodeSessionInvalidStatus Code = "SESSION_INVALID_STATUS_TRANSITION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Integrity errors
	CodeIntegrityKeyring   Code = "INTEGRITY_KEYRING"
	CodeIntegritySignature Code = "INTEGRITY_SIGNATURE"
)

// GRPCCode maps the domain error code to a gRPC status code.
//
// The battle core does not serve gRPC itself; the mapping is the published
// contract for whichever transport layer sits in front of it.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeNotFound, CodeBattleActorNotFound, CodeBattleTargetNotFound:
		return codes.NotFound
	case CodeBattleFinished, CodeSessionInvalidStatus:
		return codes.FailedPrecondition
	case CodeBattleInvalidAction, CodeBattleEmptyRoster, CodeSessionEmptyID,
		CodeSessionEmptySeed, CodeSessionInvalidType:
		return codes.InvalidArgument
	case CodeIntegrityKeyring, CodeIntegritySignature:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
