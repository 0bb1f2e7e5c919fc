package repository

import "errors"

var (
	// ErrNotFound indicates that no record exists for the given key.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a unique-key collision on insert.
	ErrAlreadyExists = errors.New("record already exists")
)
