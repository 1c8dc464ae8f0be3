package repository

import "errors"

var (
	ErrIdentityNotFound = errors.New("sending identity not found")
	ErrTouchNotFound    = errors.New("channel touch not found")
	ErrDailyLimitSpent  = errors.New("daily limit spent")
	ErrInvalidInput     = errors.New("invalid input parameters")
)
