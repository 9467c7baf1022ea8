package crypt

import "github.com/pkg/errors"

var (
	MovedError       = errors.New("CRYPT:MOVED")
	UnknownModeError = errors.New("CRYPT:UNKNOWN_MODE")
	KeySizeError     = errors.New("CRYPT:KEY_SIZE")
)
