package fulfillmentserver

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
	apierrors "github.com/Apurer/supplier-fulfillment/internal/shared/errors"
)

var responder = apierrors.NewResponder("", mapOrderError)

// mapOrderError maps the fulfillment error taxonomy onto problem responses.
func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	kind := ordersapp.ErrorKind(err)
	var problem apierrors.ProblemDetail
	switch kind {
	case "validation":
		problem = apierrors.ErrValidation
	case "item_not_found", "item_inactive":
		problem = apierrors.ErrUnprocessable
	case "insufficient_stock", "invalid_transition", "idempotency_conflict":
		problem = apierrors.ErrConflict
	case "order_not_found":
		problem = apierrors.ErrNotFound
	default:
		return apierrors.ProblemDetail{}, false
	}
	problem = problem.WithDetail(err.Error()).WithKind(kind)

	var itemErr *ordersapp.ItemError
	if errors.As(err, &itemErr) {
		problem = problem.
			WithExtension("itemKind", string(itemErr.Ref.Kind)).
			WithExtension("itemId", itemErr.Ref.ID)
		if errors.Is(err, ordersapp.ErrInsufficientStock) {
			problem = problem.
				WithExtension("requested", itemErr.Requested).
				WithExtension("available", itemErr.Available)
		}
	}
	return problem, true
}

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
