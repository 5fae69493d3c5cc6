package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const fingerprintPrefix = "sha256:"

// Fingerprint returns a stable content hash of the file at path. Same bytes
// always yield the same value, so operators can tell which dataset a running
// index was built from.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for fingerprint: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash catalog: %w", err)
	}
	return fingerprintPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
