//go:build !unix

package viewer

import (
	"errors"
	"fmt"
	"os"
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
	return nil
}
