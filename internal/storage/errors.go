package storage

import "errors"

var (
	// ErrAlreadyExists is returned by Insert when the record id is taken.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("record not found")
)
