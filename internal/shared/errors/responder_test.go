package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSoldOut = errors.New("sold out")

func soldOutMapper(err error) (ProblemDetail, bool) {
	if !errors.Is(err, errSoldOut) {
		return ProblemDetail{}, false
	}
	return ErrOutOfStock.WithDetail(err.Error()).WithExtension("productId", 7), true
}

func TestResolve(t *testing.T) {
	r := NewChainedResponder("", soldOutMapper)

	mapped := r.Resolve(fmt.Errorf("create order: %w", errSoldOut))
	assert.Equal(t, http.StatusConflict, mapped.Status)
	assert.Equal(t, TypeOutOfStock, mapped.Type)
	assert.Equal(t, 7, mapped.Extensions["productId"])

	wrapped := r.Resolve(fmt.Errorf("lookup: %w", ErrNotFound.WithDetail("gone")))
	assert.Equal(t, http.StatusNotFound, wrapped.Status)
	assert.Equal(t, "gone", wrapped.Detail)

	unknown := r.Resolve(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, unknown.Status)
	assert.Equal(t, GenericInternalDetail, unknown.Detail)
}

func TestWithExtensionDoesNotShareMaps(t *testing.T) {
	base := ErrConflict.WithExtension("a", 1)
	first := base.WithExtension("b", 2)
	second := base.WithExtension("c", 3)

	assert.Len(t, base.Extensions, 1)
	assert.NotContains(t, second.Extensions, "b")
	assert.Contains(t, first.Extensions, "b")
	assert.Nil(t, ErrConflict.Extensions)
}

func TestRespondWritesProblemJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewChainedResponder("https://gifting.example", soldOutMapper)
	router := gin.New()
	router.GET("/api/orders/create", func(c *gin.Context) {
		r.RespondError(c, errSoldOut)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/create", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://gifting.example"+TypeOutOfStock, body.Type)
	assert.Equal(t, "/api/orders/create", body.Instance)
	assert.EqualValues(t, 7, body.Extensions["productId"])
}
