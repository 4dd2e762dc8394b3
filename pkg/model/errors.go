package model

import "errors"

var ErrInvalidColumn = errors.New("invalid column")
