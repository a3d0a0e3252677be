package bank

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrUnknownKind       = errors.New("unknown account or card kind")
	ErrEmailTaken        = errors.New("email already registered")
)
