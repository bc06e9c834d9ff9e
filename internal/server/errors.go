package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
	enginedomain "github.com/commentloop/commentloop/internal/engine/domain"
	"github.com/commentloop/commentloop/internal/kv"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    validationErrorCode(err),
			Message: "validation error",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, enginedomain.ErrAccountMismatch):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, enginedomain.ErrDependencyUnavailable),
		errors.Is(err, kv.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, enginedomain.ErrInvalidComment),
		errors.Is(err, automationdomain.ErrInvalidName),
		errors.Is(err, automationdomain.ErrInvalidScope),
		errors.Is(err, automationdomain.ErrInvalidTrigger),
		errors.Is(err, automationdomain.ErrInvalidActions),
		errors.Is(err, automationdomain.ErrInvalidDiscountPool),
		errors.Is(err, discountdomain.ErrInvalidPoolName),
		errors.Is(err, discountdomain.ErrInvalidPoolType),
		errors.Is(err, discountdomain.ErrInvalidCodes),
		errors.Is(err, discountdomain.ErrDuplicateCode),
		errors.Is(err, ledgerdomain.ErrInvalidPageToken):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, automationdomain.ErrNotFound),
		errors.Is(err, discountdomain.ErrPoolNotFound),
		errors.Is(err, enginedomain.ErrUserNotFound),
		errors.Is(err, enginedomain.ErrAccountNotFound),
		errors.Is(err, accountdomain.ErrUserNotFound),
		errors.Is(err, accountdomain.ErrAccountNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	code := err.Error()
	if idx := strings.IndexByte(code, ':'); idx > 0 {
		code = code[:idx]
	}
	return code
}
