package service

import crerr "github.com/cockroachdb/errors"

var (
	ErrNotFound     = crerr.New("not found")
	ErrInvalidInput = crerr.New("invalid input")
)
