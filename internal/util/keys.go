package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxKeyLen matches memcached's key limit; the strictest store we ship a provider for.
const MaxKeyLen = 250

// StorageKey returns prefix + ":" + key. Keys that would exceed MaxKeyLen or that
// contain whitespace/control bytes are replaced by a sha256 digest so every
// provider accepts them.
func StorageKey(prefix, key string) string {
	full := prefix + ":" + key
	if len(full) <= MaxKeyLen && printable(key) {
		return full
	}
	sum := sha256.Sum256([]byte(key))
	return prefix + ":#" + hex.EncodeToString(sum[:])
}

// ValidPrefix reports whether every key StorageKey builds under prefix, hashed
// form included, stays within MaxKeyLen and free of whitespace/control bytes.
func ValidPrefix(prefix string) bool {
	return len(prefix)+len(":#")+hex.EncodedLen(sha256.Size) <= MaxKeyLen && printable(prefix)
}

func printable(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c <= ' ' || c == 0x7f {
			return false
		}
	}
	return true
}
