package output

import (
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
)

// WriteFile renders a report to path under an advisory file lock, so
// concurrent runs pointed at the same report file cannot interleave writes.
func WriteFile(path string, render func(io.Writer) error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
