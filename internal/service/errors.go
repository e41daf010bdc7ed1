package service

import "errors"

var (
	ErrValidation     = errors.New("validation")       // 400
	ErrNotFound       = errors.New("not found")        // 404
	ErrNoActiveOrder  = errors.New("no active order")  // 404 on checkout, silent for cart ops
	ErrInvalidAddress = errors.New("invalid address")  // 400
	ErrConflict       = errors.New("conflict")         // 409
	ErrDuplicateEvent = errors.New("duplicate event")  // swallowed, logged
)
