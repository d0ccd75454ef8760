package logtail

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

const chunkSize = 64 * 1024

// ReadLastLines returns up to n non-blank lines from the end of path, oldest
// first. A missing file yields no lines and no error.
func ReadLastLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, cerrors.NewIOError("open", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, cerrors.NewIOError("stat", path, err)
	}

	var (
		pos   = fi.Size()
		carry []byte
		found []string // newest first
	)
	buf := make([]byte, chunkSize)

	for pos > 0 && len(found) < n {
		size := int64(chunkSize)
		if pos < size {
			size = pos
		}
		pos -= size
		if _, err := f.ReadAt(buf[:size], pos); err != nil && !errors.Is(err, io.EOF) {
			return nil, cerrors.NewIOError("read", path, err)
		}

		data := append(append([]byte{}, buf[:size]...), carry...)
		// The first segment may continue in the previous chunk.
		first := bytes.IndexByte(data, '\n')
		if first < 0 {
			carry = data
			continue
		}
		carry = data[:first]
		found = collect(found, data[first+1:], n)
	}
	if pos == 0 && len(found) < n && len(carry) > 0 {
		found = collect(found, carry, n)
	}

	lines := make([]string, len(found))
	for i, l := range found {
		lines[len(found)-1-i] = l
	}
	return lines, nil
}

// collect appends the non-blank lines of data to found, newest first, until
// it holds n.
func collect(found []string, data []byte, n int) []string {
	segments := strings.Split(string(data), "\n")
	for i := len(segments) - 1; i >= 0 && len(found) < n; i-- {
		line := strings.TrimRight(segments[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		found = append(found, line)
	}
	return found
}
