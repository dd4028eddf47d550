package fileutil

import (
	"fmt"
	"io"
	"os"
)

// ConcatFiles writes every source, in order, into dst in a single pass and
// returns the number of bytes written. dst is removed if any source fails.
func ConcatFiles(dst string, sources []string) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, src := range sources {
		n, err := appendFile(out, src)
		total += n
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
			return total, fmt.Errorf("append %s: %w", src, err)
		}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return total, err
	}
	return total, nil
}

func appendFile(out io.Writer, src string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return io.Copy(out, in)
}
