package integrity

import (
	"fmt"
	"strings"
)

const defaultKeyID = "v1"

// KeyringFromSpec builds a keyring from the ARENA_ACTION_HMAC_KEYS spec
// format: comma-separated "id=secret" entries. A bare secret with no "="
// becomes a single-key ring under keyID (defaulting to "v1").
//
// An empty spec returns a nil keyring and no error: signing is opt-in.
func KeyringFromSpec(keySpec, keyID string) (*Keyring, error) {
	keySpec = strings.TrimSpace(keySpec)
	if keySpec == "" {
		return nil, nil
	}
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		keyID = defaultKeyID
	}

	if !strings.Contains(keySpec, "=") {
		return NewKeyring(map[string][]byte{keyID: []byte(keySpec)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid hmac key entry %q", entry)
		}
		id := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if id == "" || value == "" {
			return nil, fmt.Errorf("invalid hmac key entry %q", entry)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
