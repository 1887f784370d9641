// Package repository provides the MySQL data access layer for user
// accounts and refresh tokens.  Sentinel errors defined here let handlers
// distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the normalized email
// is already registered.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
