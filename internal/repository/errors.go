// Package repository implements the MySQL persistence layer.  This file
// defines sentinel errors shared across repositories so handlers can map
// failure modes onto HTTP responses without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist.  sql.ErrNoRows never
// escapes the repository layer.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a conditional state transition finds the row
// in a different state than required, e.g. approving a reservation that is
// no longer pending.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned on performer signup when the email is taken.
var ErrEmailExists = errors.New("email already exists")
