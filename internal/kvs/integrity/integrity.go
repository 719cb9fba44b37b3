// Package integrity implements the content-addressed codec backing every
// persisted KVS payload: a SHA-256 digest over the exact serialized bytes,
// hex-encoded into a sidecar file distinct from the payload.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
)

// Hash returns the hex-encoded SHA-256 digest of data, in the exact
// textual form written to and read from a .hash sidecar file.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify checks that data hashes to the digest recorded in sidecar (the
// textual contents of a .hash file). It returns a *kvserr.Error with Code
// IntegrityError on mismatch.
func Verify(data []byte, sidecar string) error {
	if Hash(data) != sidecar {
		return kvserr.New(kvserr.IntegrityError, "hash sidecar does not match payload")
	}
	return nil
}
