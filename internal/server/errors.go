package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/invoicenumber"
	"github.com/smallbiznis/sevadesk/internal/lock"
	reportdomain "github.com/smallbiznis/sevadesk/internal/report/domain"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrRateLimited        = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, sevadomain.ErrDuplicateKey):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "invoice identifier already taken, retry the request",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, invoicenumber.ErrAllocatorExhausted):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "allocator_exhausted",
			Message: "no invoice identifiers left for this invoice type",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, lock.ErrLockTimeout):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many report requests, retry later",
		}
	case errors.Is(err, reportdomain.ErrReportGeneration):
		return http.StatusInternalServerError, errorPayload{
			Type:    "report_generation_failed",
			Message: "report generation failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and code the request logger records.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "server", code
	}
	return "client", code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, reportdomain.ErrInvalidPeriod),
		isServiceValidationError(err):
		return true
	default:
		return false
	}
}

func isServiceValidationError(err error) bool {
	switch {
	case errors.Is(err, sevadomain.ErrInvalidKind),
		errors.Is(err, sevadomain.ErrInvalidFrequency),
		errors.Is(err, sevadomain.ErrInvalidPaymentMethod),
		errors.Is(err, sevadomain.ErrInvalidAddress),
		errors.Is(err, sevadomain.ErrInvalidField),
		errors.Is(err, sevadomain.ErrInvalidInvoiceID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, sevadomain.ErrNotFound),
		errors.Is(err, reportdomain.ErrArtifactNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, catalog.ErrUnknownCategory):
		return "invalid_service_type"
	case errors.Is(err, reportdomain.ErrInvalidPeriod):
		return "invalid_period"
	case errors.Is(err, sevadomain.ErrInvalidKind):
		return sevadomain.ErrInvalidKind.Error()
	case errors.Is(err, sevadomain.ErrInvalidFrequency):
		return sevadomain.ErrInvalidFrequency.Error()
	case errors.Is(err, sevadomain.ErrInvalidPaymentMethod):
		return sevadomain.ErrInvalidPaymentMethod.Error()
	case errors.Is(err, sevadomain.ErrInvalidAddress):
		return sevadomain.ErrInvalidAddress.Error()
	case errors.Is(err, sevadomain.ErrInvalidInvoiceID):
		return sevadomain.ErrInvalidInvoiceID.Error()
	default:
		return sevadomain.ErrInvalidField.Error()
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_service_type":
		return "serviceType"
	case "invalid_invoice_kind":
		return "invoiceType"
	case "invalid_frequency":
		return "frequency"
	case "invalid_payment_method":
		return "paymentMethod"
	case "invalid_invoice_id":
		return "invoiceId"
	}
	return strings.TrimPrefix(code, "invalid_")
}
