package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidColor    = errors.New("invalid color")
)
