package domain

import "errors"

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidRating    = errors.New("rating must be a finite number")
	ErrUnknownView      = errors.New("unknown view")
)
