package repository

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotActive    = errors.New("session not active")
	ErrBetNotPending       = errors.New("bet not pending")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
