package model

import "errors"

// Load errors.
var (
	ErrImport        = errors.New("model import failed")
	ErrNoScene       = errors.New("importer returned no scene")
	ErrNoRoot        = errors.New("model has no root piece")
	ErrDuplicateRoot = errors.New("model has more than one root piece")
)
