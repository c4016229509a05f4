package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/middleware"
	"carteira/internal/money"
	"carteira/internal/services"
	"carteira/internal/uuid"
)

const dateLayout = "2006-01-02"

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parseIDParam reads a UUID path parameter.
func parseIDParam(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse carries a user-facing confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Amount is a leniently parsed money value. It accepts a JSON number, a JSON
// string ("12,50" included) or a form value and never fails to bind; Valid
// reports whether the input parsed.
type Amount struct {
	Value   decimal.Decimal
	Present bool
	Valid   bool
}

func (a *Amount) set(raw string) {
	raw = strings.TrimSpace(raw)
	a.Present = raw != ""
	if !a.Present {
		return
	}
	d, err := money.Parse(raw)
	a.Value, a.Valid = d, err == nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.Present = true
			return nil
		}
		a.set(s)
		return nil
	}
	if len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')) {
		a.set(string(b))
		return nil
	}
	a.Present = len(b) > 0
	return nil
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form values.
func (a *Amount) UnmarshalParam(param string) error {
	a.set(param)
	return nil
}

// OrZero returns the parsed value, or zero when the input was missing or
// malformed.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// ListingQuery holds the optional listing parameters shared by the reports
// page, the transaction list and the exports.
type ListingQuery struct {
	Account   string `form:"conta"`
	Category  string `form:"categoria"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
	Sort      string `form:"sort"`
	Page      string `form:"page"`
}

// parseListingQuery reads the listing parameters. Malformed ids and dates are
// rejected; unknown sort values fall through to the default order.
func parseListingQuery(c *gin.Context) (services.TransactionFilter, string, error) {
	var q ListingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return services.TransactionFilter{}, "", apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	filter := services.TransactionFilter{
		Search: q.Search,
		Sort:   q.Sort,
	}
	if q.Account != "" {
		id, err := uuid.Parse(q.Account)
		if err != nil {
			return filter, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid conta")
		}
		filter.AccountID = &id
	}
	if q.Category != "" {
		id, err := uuid.Parse(q.Category)
		if err != nil {
			return filter, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid categoria")
		}
		filter.CategoryID = &id
	}
	if q.StartDate != "" {
		d, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return filter, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be YYYY-MM-DD")
		}
		filter.StartDate = &d
	}
	if q.EndDate != "" {
		d, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return filter, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be YYYY-MM-DD")
		}
		filter.EndDate = &d
	}
	return filter, q.Page, nil
}

// parseFlexibleTime accepts RFC3339 or YYYY-MM-DD.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}
