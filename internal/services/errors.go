package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateReview    = errors.New("you have already reviewed this doctor")
	ErrAlreadyResponded   = errors.New("review already has a response")
	ErrEmailInUse         = errors.New("email already in use")
	ErrNotPending         = errors.New("only pending doctors can be rejected")
	ErrNotApproved        = errors.New("only approved doctors can be hidden")
	ErrGateway            = errors.New("payment provider unavailable")
	ErrUploadUnavailable  = errors.New("image upload is not configured")
)
