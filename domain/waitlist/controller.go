package waitlist

import (
	"net/http"

	"github.com/heijo-app/waitlist/config/router"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
)

// NewWaitlistController serves POST /api/join and its older alias /api/collect-email.
// Both paths share one handler; OPTIONS and 405s are answered by the router.
func NewWaitlistController(service WaitlistService, limiter ratelimit.RateLimiter) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		"/api",
		func(rs *router.RouterService, c *router.RESTController) {
			RegisterValidators()
			c.RateLimitWith(rs, limiter)

			handler := createWaitlistEntryHandler(service)

			rs.AddPostHandler(c, nil, "join", handler)
			rs.AddPostHandler(c, nil, "collect-email", handler)
		},
	)
}

func createWaitlistEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req CreateWaitlistEntryRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			message := BindErrorMessage(err)
			logger.Warn("Rejected waitlist submission",
				"reason", message,
				"validation", apperrors.FormatValidationErrors(err, &req),
			)
			return router.ErrorPayloadResult(http.StatusBadRequest, message, "")
		}

		if _, err := service.CreateEntry(ctx.Request.Context(), &req); err != nil {
			return errorResult(err)
		}

		return router.PayloadResult(http.StatusOK, SubmissionResponse{Success: true})
	}
}

func errorResult(err error) *router.ServiceResult {
	switch apperrors.GetErrorType(err) {
	case apperrors.ErrorTypeInvalidRequest:
		return router.ErrorPayloadResult(http.StatusBadRequest, apperrors.GetHumanReadableMessage(err), "")
	case apperrors.ErrorTypeDatabaseError:
		return router.ErrorPayloadResult(http.StatusInternalServerError, MessageSaveFailed, apperrors.Details(err))
	default:
		return router.ErrorPayloadResult(apperrors.HTTPStatusCode(err), MessageUnexpected, "")
	}
}
