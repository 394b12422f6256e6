package biz

import "errors"

var (
	ErrInvalidJWT      = errors.New("invalid jwt token")
	ErrInvalidPassword = errors.New("invalid password")
	ErrLeadConverted   = errors.New("lead already converted")
	ErrInternal        = errors.New("server internal error, please try again later")
)
