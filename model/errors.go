package model

import "errors"

// Error taxonomy shared by the server and the board client. Callers wrap these
// with context and match with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrStoreFailure    = errors.New("store failure")
)

// errorCodes are the machine-readable names of the taxonomy on the wire.
var errorCodes = []struct {
	code string
	err  error
}{
	{"validation", ErrValidation},
	{"invalid_argument", ErrInvalidArgument},
	{"not_found", ErrNotFound},
	{"forbidden", ErrForbidden},
	{"unauthenticated", ErrUnauthenticated},
	{"conflict", ErrConflict},
	{"store_failure", ErrStoreFailure},
}

// ErrorCode returns the wire code of err, or "" when err is outside the taxonomy.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// ErrorForCode is the inverse of ErrorCode. Unknown codes return nil.
func ErrorForCode(code string) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	return nil
}
