package errors

import (
	"net/http"
)

func BadRequest() ErrorEnricher   { return WithCode(http.StatusBadRequest) }
func Unauthorized() ErrorEnricher { return WithCode(http.StatusUnauthorized) }
func Forbidden() ErrorEnricher    { return WithCode(http.StatusForbidden) }
func NotFound() ErrorEnricher     { return WithCode(http.StatusNotFound) }
func BadGateway() ErrorEnricher   { return WithCode(http.StatusBadGateway) }

func IsNotFound(err error) bool {
	return CodeOf(err) == http.StatusNotFound
}

func IsBadRequest(err error) bool {
	return CodeOf(err) == http.StatusBadRequest
}
