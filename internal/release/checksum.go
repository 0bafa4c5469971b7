package release

import (
	"crypto/md5" //nolint:gosec // the plugin installer verifies packages with MD5
	"encoding/hex"
	"fmt"
	"os"
)

// Checksum returns the lowercase hex MD5 digest of the file. The whole file is
// read into memory; plugin packages are small.
func Checksum(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}
