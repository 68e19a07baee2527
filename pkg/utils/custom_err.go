package utils

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrItemNotFound     = errors.New("item not found")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrOutOfStock       = errors.New("insufficient stock")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrCartEmpty        = errors.New("cart is empty")

	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrRefundNotFound   = errors.New("refund not found")

	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyPaid       = errors.New("purchase already paid")
	ErrInvalidState      = errors.New("payment is not refundable in its current state")
	ErrExceedsRefundable = errors.New("refund amount exceeds refundable balance")
	ErrInvalidAmount     = errors.New("amount must be positive")

	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrProviderRequest     = errors.New("payment provider rejected the request")
	ErrSignatureInvalid    = errors.New("webhook signature invalid")
	ErrUnknownProvider     = errors.New("unknown payment provider")

	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
)
