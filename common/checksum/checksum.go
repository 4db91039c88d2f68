// Package checksum computes and verifies the SHA-256 digests used to
// guarantee a FileBackup is byte-identical to what it claims to be
// before a rollback restores it.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const prefix = "sha256:"

// SHA256Bytes returns the "sha256:<hex>" digest of data.
func SHA256Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return prefix + hex.EncodeToString(sum[:])
}

// SHA256File streams path through SHA-256 and returns "sha256:<hex>".
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports an error if path's SHA-256 does not match expected,
// which must be in "sha256:<hex>" form.
func Verify(path, expected string) error {
	if !strings.HasPrefix(expected, prefix) || len(expected) != len(prefix)+64 {
		return fmt.Errorf("invalid checksum format: %q", expected)
	}
	actual, err := SHA256File(path)
	if err != nil {
		return fmt.Errorf("compute checksum: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
