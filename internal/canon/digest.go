package canon

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestHex returns the SHA-256 digest of data as lowercase hex.
func DigestHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestWithPrefix returns the SHA-256 digest with the "sha256:" prefix.
func DigestWithPrefix(data []byte) string {
	return "sha256:" + DigestHex(data)
}

// DigestValue canonicalizes v and digests the canonical bytes.
func DigestValue(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	return DigestWithPrefix(canonical), nil
}
