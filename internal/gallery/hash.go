package gallery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashChunkSize is the read buffer used while hashing. The digest is
// independent of the chunk size; files are never loaded whole into memory.
const hashChunkSize = 32 * 1024

// FileHash returns the hex SHA-256 digest of the file's content. It is used
// as a change-detection oracle between indexing runs, not for security.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashChunkSize)); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
