// Package rotate implements size-based log rotation: files over the
// threshold are compressed into numbered generations (name.1.gz up to
// name.N.gz) and truncated in place so writers keep their open handles.
package rotate

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Options parameterizes a rotation pass.
type Options struct {
	Targets []string
	MaxSize int64 // bytes; files at or above this size rotate
	Keep    int   // generations to retain; minimum 1

	DryRun      bool
	TraceWriter io.Writer
}

// Rotation describes what happened to one target.
type Rotation struct {
	Path    string
	Size    int64
	Rotated bool
}

// Run rotates every configured target that exceeds the size threshold.
// Missing targets are skipped with a zero Rotation rather than failing
// the whole pass.
func Run(opts Options) ([]Rotation, error) {
	if opts.Keep < 1 {
		opts.Keep = 1
	}
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("rotate max size must be positive, got %d", opts.MaxSize)
	}
	if opts.TraceWriter == nil {
		opts.TraceWriter = os.Stderr
	}

	results := make([]Rotation, 0, len(opts.Targets))
	for _, target := range opts.Targets {
		r := Rotation{Path: target}

		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				results = append(results, r)
				continue
			}
			return results, fmt.Errorf("stat %s: %w", target, err)
		}
		r.Size = info.Size()

		if r.Size < opts.MaxSize {
			results = append(results, r)
			continue
		}

		if opts.DryRun {
			fmt.Fprintf(opts.TraceWriter, "+ rotate %s (%d bytes)\n", target, r.Size)
			r.Rotated = true
			results = append(results, r)
			continue
		}

		if err := rotateFile(target, opts.Keep); err != nil {
			return results, fmt.Errorf("rotate %s: %w", target, err)
		}
		r.Rotated = true
		results = append(results, r)
	}
	return results, nil
}

// rotateFile shifts existing generations up, compresses the live file
// into generation 1, and truncates the live file.
func rotateFile(path string, keep int) error {
	// Oldest generation falls off the end.
	last := generation(path, keep)
	if _, err := os.Stat(last); err == nil {
		if err := os.Remove(last); err != nil {
			return err
		}
	}
	for i := keep - 1; i >= 1; i-- {
		from := generation(path, i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, generation(path, i+1)); err != nil {
			return err
		}
	}

	if err := compressTo(path, generation(path, 1)); err != nil {
		return err
	}
	return os.Truncate(path, 0)
}

func generation(path string, n int) string {
	return fmt.Sprintf("%s.%d.gz", path, n)
}

func compressTo(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
