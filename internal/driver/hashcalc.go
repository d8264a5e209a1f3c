package driver

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digest is a SHA-256 value.
type Digest [32]byte

// cacheKey: H(schema || content || lang || fingerprint || maxDepth). The
// fingerprint covers every rule of the grammar, including nested and referenced grammars,
// so editing a user grammar invalidates its entries.
func cacheKey(content Digest, lang, fingerprint string, maxDepth int) Digest {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[:2], diskCacheSchemaVersion)
	_, _ = h.Write(buf[:2])
	_, _ = h.Write(content[:])
	writeString(h, lang)
	writeString(h, fingerprint)
	binary.BigEndian.PutUint64(buf[:], uint64(max(maxDepth, 0)))
	_, _ = h.Write(buf[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	_, _ = h.Write(n[:])
	_, _ = h.Write([]byte(s))
}
