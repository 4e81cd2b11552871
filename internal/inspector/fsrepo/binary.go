package fsrepo

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// binaryDetectionBytes is the number of leading bytes read to detect binary
// content, matching Git's own heuristic.
const binaryDetectionBytes = 8192

// isBinary reports whether the file at path contains binary content, by
// checking its first 8KB for a null byte. An empty file is not binary.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s for binary detection: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, binaryDetectionBytes)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading %s for binary detection: %w", path, err)
	}
	if n == 0 {
		return false, nil
	}
	return bytes.IndexByte(buf[:n], 0) != -1, nil
}
