package verification

import "errors"

var (
	ErrNotProtected   = errors.New("channel is not protected")
	ErrUnknownChannel = errors.New("channel is not registered")
	ErrDenied         = errors.New("requester is banned from this channel")
)
