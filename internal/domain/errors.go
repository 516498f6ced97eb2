package domain

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidBankDetails  = errors.New("invalid bank details")
	ErrSignatureMismatch   = errors.New("payment signature mismatch")
	ErrPaymentNotCaptured  = errors.New("payment not captured")
	ErrOrderNotFound       = errors.New("payment order not found")
	ErrAlreadySettled      = errors.New("payment order already settled")
	ErrOrderClosed         = errors.New("payment order is closed")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrWithdrawalResolved  = errors.New("withdrawal already resolved")
	ErrInvalidStatus       = errors.New("invalid status")
)
