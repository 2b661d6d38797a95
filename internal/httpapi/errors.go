package httpapi

import (
	"errors"
	"net/http"

	"github.com/roach88/rollcall/internal/domain"
)

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code and a human message.
type ErrorDetail struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNone:
		return http.StatusOK
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAlreadyInserted, domain.KindAlreadyRemoved, domain.KindListingExists:
		return http.StatusConflict
	case domain.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the envelope for err. Internal faults never leak their
// message to the client.
func errorBody(err error) (int, ErrorBody) {
	kind := domain.KindOf(err)
	detail := ErrorDetail{Code: kind.String(), Message: err.Error()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		detail.Violations = ve.Violations
	}
	if kind == domain.KindInternal {
		detail.Message = "internal error"
	}
	return statusFor(kind), ErrorBody{Error: detail}
}
