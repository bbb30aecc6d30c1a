package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/monchain/arena/internal/battle"
)

// ActionHash computes the content hash for a single action record.
//
// The envelope is a fixed-order, pipe-delimited string so field ordering is
// defined in one place and cannot drift between implementations. Timestamps
// and signatures are excluded: the hash covers exactly the fields the replay
// verifier recomputes.
func ActionHash(sessionID string, rec battle.ActionRecord) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	envelope := strings.Join([]string{
		"v1",
		sessionID,
		strconv.Itoa(rec.Turn),
		rec.ActorUID,
		rec.MoveID,
		rec.TargetUID,
		strconv.Itoa(rec.Damage),
		strconv.FormatBool(rec.Hit),
	}, "|")
	sum := sha256.Sum256([]byte(envelope))
	return hex.EncodeToString(sum[:]), nil
}

// ChainHash computes the SHA-256 hash that links an action to its
// predecessor. The first action in a session uses an empty prevHash.
func ChainHash(actionHash, prevHash string) (string, error) {
	actionHash = strings.TrimSpace(actionHash)
	if actionHash == "" {
		return "", fmt.Errorf("action hash is required")
	}
	sum := sha256.Sum256([]byte(prevHash + "|" + actionHash))
	return hex.EncodeToString(sum[:]), nil
}
