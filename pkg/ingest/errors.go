package ingest

import "errors"

var ErrStoreNil = errors.New("task store is nil")
