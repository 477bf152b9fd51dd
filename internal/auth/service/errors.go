package service

import "errors"

var (
	ErrInsecureTransport    = errors.New("insecure_transport")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrAlreadyExists        = errors.New("client_already_exists")
	ErrIssuanceFailed       = errors.New("token_issuance_failed")
	ErrMalformedRequest     = errors.New("invalid_request")
)
