package giftingserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	adminsapp "github.com/Apurer/gifting-api/internal/domains/admins/application"
	adminsports "github.com/Apurer/gifting-api/internal/domains/admins/ports"
	catalogapp "github.com/Apurer/gifting-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
	ordersapp "github.com/Apurer/gifting-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/gifting-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/gifting-api/internal/shared/errors"
)

// responder maps domain and application errors to RFC 7807 responses. Unmapped errors become a
// generic 500.
var responder = apierrors.NewChainedResponder("",
	outOfStockProblem,
	priceMismatchProblem,
	notFoundProblem,
	conflictProblem,
	invalidInputProblem,
	authenticationProblem,
)

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problem := responder.Resolve(err)
	if problem.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	responder.Respond(c, problem)
}

// respondBindError reports a payload that could not be decoded or failed its binding rules.
func respondBindError(c *gin.Context, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		fields := make(map[string]string, len(fieldErrors))
		for _, fe := range fieldErrors {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
		responder.ValidationFailed(c, fields)
		return
	}
	responder.BadRequest(c, err.Error())
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return lowerFirst(ns)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must contain digits only"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func outOfStockProblem(err error) (apierrors.ProblemDetail, bool) {
	var oos *orderdomain.OutOfStockError
	if !errors.As(err, &oos) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrOutOfStock.WithDetail(oos.Error()).
		WithExtension("productId", oos.ProductID).
		WithExtension("productName", oos.ProductName).
		WithExtension("requestedQuantity", oos.RequestedQuantity).
		WithExtension("availableQuantity", oos.AvailableQuantity), true
}

func priceMismatchProblem(err error) (apierrors.ProblemDetail, bool) {
	var pm *orderdomain.PriceMismatchError
	if !errors.As(err, &pm) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrPriceMismatch.WithDetail(pm.Error()).
		WithExtension("productId", pm.ProductID).
		WithExtension("productName", pm.ProductName).
		WithExtension("clientPrice", numeric(orderdomain.FormatPrice(pm.ClientPrice))).
		WithExtension("serverPrice", numeric(orderdomain.FormatPrice(pm.ServerPrice))), true
}

func notFoundProblem(err error) (apierrors.ProblemDetail, bool) {
	var nf *ordersapp.NotFoundError
	if errors.As(err, &nf) {
		return apierrors.NewNotFoundProblem(nf.Resource, nf.Identifier).WithDetail(nf.Error()), true
	}
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "Order"), true
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func conflictProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, catalogports.ErrDuplicateCategory) {
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	if errors.Is(err, ordersports.ErrTransactionConflict) || errors.Is(err, ordersports.ErrDuplicateOrderNumber) {
		return apierrors.ErrConflict.WithDetail("order could not be placed because of concurrent updates, retry"), true
	}
	return apierrors.ProblemDetail{}, false
}

func invalidInputProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, ordersapp.ErrInvalidInput) ||
		errors.Is(err, catalogapp.ErrInvalidInput) ||
		errors.Is(err, adminsapp.ErrInvalidInput) ||
		errors.Is(err, catalogports.ErrUnsupportedImage) ||
		errors.Is(err, catalogports.ErrImageTooLarge) ||
		errors.Is(err, catalogports.ErrEmptyImage) {
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func authenticationProblem(err error) (apierrors.ProblemDetail, bool) {
	if !errors.Is(err, adminsapp.ErrAuthentication) {
		return apierrors.ProblemDetail{}, false
	}
	if errors.Is(err, adminsports.ErrInvalidToken) {
		return apierrors.ErrUnauthorized.WithDetail("invalid or expired token"), true
	}
	return apierrors.ErrUnauthorized.WithDetail("invalid username or password"), true
}

// numeric keeps money values as JSON numbers in problem extensions.
type numeric string

func (n numeric) MarshalJSON() ([]byte, error) { return []byte(n), nil }

// parseIDParam binds a simple-style path parameter into an int64 id.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		responder.BadRequest(c, fmt.Sprintf("invalid %s: %s", name, c.Param(name)))
		return 0, false
	}
	return id, true
}
