// Package errors renders RFC 7807 problem details for the gifting API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is the body of every error response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Extensions carries machine-readable context such as the offending product id.
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with one more extension member. The receiver's map is not shared.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

const (
	TypeValidation    = "/problems/validation-error"
	TypeBadRequest    = "/problems/bad-request"
	TypeNotFound      = "/problems/not-found"
	TypeConflict      = "/problems/conflict"
	TypeOutOfStock    = "/problems/out-of-stock"
	TypePriceMismatch = "/problems/price-mismatch"
	TypeUnauthorized  = "/problems/unauthorized"
	TypeRateLimited   = "/problems/too-many-requests"
	TypeInternal      = "/problems/internal-error"
)

func problem(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

// Problem templates. Callers specialise them with WithDetail and WithExtension.
var (
	ErrValidation    = problem(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest    = problem(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrNotFound      = problem(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrConflict      = problem(TypeConflict, "Conflict", http.StatusConflict)
	ErrOutOfStock    = problem(TypeOutOfStock, "Out Of Stock", http.StatusConflict)
	ErrPriceMismatch = problem(TypePriceMismatch, "Price Mismatch", http.StatusConflict)
	ErrUnauthorized  = problem(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrRateLimited   = problem(TypeRateLimited, "Too Many Requests", http.StatusTooManyRequests)
	ErrInternal      = problem(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
)

// NewValidationProblem reports field-level input errors under the "fields" extension.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewNotFoundProblem names the missing resource and the identifier that did not resolve.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}
