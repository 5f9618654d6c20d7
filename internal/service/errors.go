package service

import "errors"

var (
	ErrAccessDenied        = errors.New("access denied")
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidDocumentType = errors.New("invalid document type")
)
