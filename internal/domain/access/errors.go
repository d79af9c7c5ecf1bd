package access

import "errors"

var (
	ErrInvalidID   = errors.New("invalid access request id")
	ErrNotFound    = errors.New("access request not found")
	ErrAlreadyUsed = errors.New("access request already used")
	ErrReserved    = errors.New("access request is being verified")
	ErrNotHolder   = errors.New("reservation held by another submission")
)
