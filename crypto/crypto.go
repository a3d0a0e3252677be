package crypto

import (
	crand "crypto/rand"
	"encoding/hex"
	"io"
)

func GetEntropyCSPRNG(n int) []byte {
	mainBuff := make([]byte, n)
	_, err := io.ReadFull(crand.Reader, mainBuff)
	if err != nil {
		panic("reading from crypto/rand failed: " + err.Error())
	}
	return mainBuff
}

// NewId returns a 16-char hex identifier derived from fresh entropy.
func NewId() string {
	return hex.EncodeToString(Hash(8, GetEntropyCSPRNG(16)))
}
