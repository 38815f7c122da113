package router

import (
	"net/http"

	"github.com/heijo-app/waitlist/internal/log"
)

func GetLogger(ctx *RequestContext) *log.Logger {
	if logger := ctx.Request.Context().Value(log.LoggerKeyForContext); logger != nil {
		if l, ok := logger.(*log.Logger); ok {
			return l
		}
	}

	baseLogger := log.NewLoggerWithJSONOutput()
	return baseLogger.WithCorrelationID(ctx.Request.Context())
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusTooManyRequests,
		Data:       data,
		Message:    "Too Many Requests",
	}
}

func NotFoundResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusNotFound,
		Data:       nil,
		Message:    message,
	}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusInternalServerError,
		Data:       nil,
		Message:    message,
	}
}

func ServiceUnavailableResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusServiceUnavailable,
		Data:       data,
		Message:    message,
	}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}

// PayloadResult writes payload as-is, bypassing the {code,data,message} envelope.
func PayloadResult(statusCode int, payload any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Payload:    payload,
	}
}

// ErrorPayload is the {"error": ..., "details": ...} body used by public form endpoints.
type ErrorPayload struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func ErrorPayloadResult(statusCode int, message, details string) *ServiceResult {
	return PayloadResult(statusCode, ErrorPayload{Error: message, Details: details})
}

func HTMLResult(statusCode int, template string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Template:   template,
	}
}

func (result *ServiceResult) WithHeader(key, value string) *ServiceResult {
	if result.Headers == nil {
		result.Headers = make(map[string]string)
	}
	result.Headers[key] = value
	return result
}
