package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/rivet/internal/rivstore"
	"github.com/samcharles93/rivet/pkg/riv"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps a codec or store error to an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, riv.ErrAnchorNotFound):
		return http.StatusNotFound, "anchor_not_found"
	case errors.Is(err, riv.ErrBadMagic),
		errors.Is(err, riv.ErrTruncatedInput),
		errors.Is(err, riv.ErrOverflow),
		errors.Is(err, riv.ErrDuplicateKey),
		errors.Is(err, riv.ErrUnknownProperty):
		return http.StatusUnprocessableEntity, "decode_error"
	case errors.Is(err, rivstore.ErrUndeclaredKey):
		return http.StatusUnprocessableEntity, "undeclared_key"
	case errors.Is(err, rivstore.ErrVerify):
		return http.StatusInternalServerError, "verify_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
