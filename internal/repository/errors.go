package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateEmail indicates an active account already uses the email.
var ErrDuplicateEmail = errors.New("repository: duplicate email")
