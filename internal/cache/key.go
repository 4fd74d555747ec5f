package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Key returns the cache key for one file analyzed with the given options. The
// options string must change whenever an option that affects results changes.
func Key(path string, content []byte, options string) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(path), content, []byte(options)} {
		// Length-prefix each part so that boundaries cannot shift.
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}
