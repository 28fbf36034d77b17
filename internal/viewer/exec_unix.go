//go:build unix

package viewer

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func checkExecutable(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingExecutable, path)
		}
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingExecutable, path)
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("%w: %s is not executable: %v", ErrMissingExecutable, path, err)
	}
	return nil
}
