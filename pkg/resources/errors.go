package resources

import "errors"

var (
	ErrLoaderNil           = errors.New("resource loader is nil")
	ErrResourceUnavailable = errors.New("resource unavailable")
)
