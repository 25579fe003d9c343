package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account id already exists")
	ErrEmailTaken      = errors.New("email already registered")

	// Document errors
	ErrProfileNotFound = errors.New("user profile not found")
)
