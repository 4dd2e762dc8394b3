package resources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirLoader serves module resources from files laid out as
// <Root>/<module>/<resource>.
type DirLoader struct {
	Root string
}

func (d DirLoader) Load(ctx context.Context, moduleID, resourceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(moduleID, resourceID)
	if err != nil {
		return err
	}
	if _, err := os.ReadFile(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrResourceUnavailable, path)
		}
		return err
	}
	return nil
}

func (d DirLoader) path(moduleID, resourceID string) (string, error) {
	for _, part := range []string{moduleID, resourceID} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: invalid path element %q", ErrResourceUnavailable, part)
		}
	}
	return filepath.Join(d.Root, moduleID, resourceID), nil
}
