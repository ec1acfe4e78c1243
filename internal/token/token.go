package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Size is the number of random bytes behind every token.
const Size = 32

// Generator produces opaque invitation tokens.
type Generator func() (string, error)

// Generate returns Size bytes from crypto/rand, hex encoded.
func Generate() (string, error) {
	return generateFrom(rand.Reader)
}

func generateFrom(r io.Reader) (string, error) {
	b := make([]byte, Size)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
