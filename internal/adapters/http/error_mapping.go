package httpadapter

import (
	"net/http"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAuthorityUnknown):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrBatchNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
