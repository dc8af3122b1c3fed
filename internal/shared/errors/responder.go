package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// GenericInternalDetail is the only detail ever returned for unclassified failures.
const GenericInternalDetail = "an unexpected error occurred"

// ErrorMapper turns a domain or application error into a problem. It reports false for errors it
// does not recognise.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder writes problem responses, classifying errors through an ordered list of mappers.
type ChainedResponder struct {
	baseURI string
	mappers []ErrorMapper
}

// NewChainedResponder builds a responder. A non-empty baseURI is prefixed to relative problem types.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{baseURI: baseURI, mappers: mappers}
}

// Resolve classifies err. The first matching mapper wins, then a wrapped ProblemDetail, and
// anything else becomes a 500 carrying GenericInternalDetail.
func (r *ChainedResponder) Resolve(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	return ErrInternal.WithDetail(GenericInternalDetail)
}

// Respond aborts the request with problem. Instance defaults to the request path.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError resolves err and writes the result.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.Resolve(err))
}

func (r *ChainedResponder) NotFound(c *gin.Context, resourceType string, identifier any) {
	r.Respond(c, NewNotFoundProblem(resourceType, identifier))
}

func (r *ChainedResponder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

func (r *ChainedResponder) ValidationFailed(c *gin.Context, fieldErrors map[string]string) {
	r.Respond(c, NewValidationProblem(fieldErrors))
}

func (r *ChainedResponder) TooManyRequests(c *gin.Context) {
	r.Respond(c, ErrRateLimited.WithDetail("rate limit exceeded, retry later"))
}
