package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sort"

	sonic "github.com/bytedance/sonic"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "musileague"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain           string `json:"domain"`
	Reason           string `json:"reason"`
	Message          string `json:"message"`
	Location         string `json:"location,omitempty"`
	CostRequired     *int64 `json:"costRequired,omitempty"`
	BalanceAvailable *int64 `json:"balanceAvailable,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	var validationErr *roster.ValidationError
	if errors.As(err, &validationErr) {
		writeValidationError(ctx, w, validationErr)
		return
	}

	var balanceErr *usecase.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		writeInsufficientBalanceError(ctx, w, balanceErr)
		return
	}

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

// writeValidationError expands a rejected submission into one error
// item per offending field, keyed by slot_1..slot_5 and captain.
func writeValidationError(ctx context.Context, w http.ResponseWriter, validationErr *roster.ValidationError) {
	fields := make([]string, 0, len(validationErr.Fields))
	for field := range validationErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	items := make([]googleErrorItem, 0, len(fields))
	for _, field := range fields {
		items = append(items, googleErrorItem{
			Domain:   errorDomain,
			Reason:   "invalidRoster",
			Message:  validationErr.Fields[field],
			Location: field,
		})
	}

	writeJSON(ctx, w, http.StatusBadRequest, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusBadRequest,
			Message: validationErr.Error(),
			Status:  "INVALID_ARGUMENT",
			Errors:  items,
		},
	})
}

// writeInsufficientBalanceError carries the amounts as structured
// fields so callers can render the shortfall without parsing the
// message.
func writeInsufficientBalanceError(ctx context.Context, w http.ResponseWriter, balanceErr *usecase.InsufficientBalanceError) {
	required := balanceErr.Required
	available := balanceErr.Available

	writeJSON(ctx, w, http.StatusPaymentRequired, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusPaymentRequired,
			Message: balanceErr.Error(),
			Status:  "FAILED_PRECONDITION",
			Errors: []googleErrorItem{
				{
					Domain:           errorDomain,
					Reason:           "insufficientBalance",
					Message:          balanceErr.Error(),
					CostRequired:     &required,
					BalanceAvailable: &available,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "invalidInput",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{
			HTTPStatus: http.StatusUnauthorized,
			Reason:     "unauthorized",
			Status:     "UNAUTHENTICATED",
		}
	case errors.Is(err, usecase.ErrInsufficientBalance):
		return mappedError{
			HTTPStatus: http.StatusPaymentRequired,
			Reason:     "insufficientBalance",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{
			HTTPStatus: http.StatusNotFound,
			Reason:     "notFound",
			Status:     "NOT_FOUND",
		}
	case errors.Is(err, usecase.ErrConflict):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "conflict",
			Status:     "ABORTED",
		}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Reason:     "dependencyUnavailable",
			Status:     "UNAVAILABLE",
		}
	default:
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Reason:     "internalError",
			Status:     "INTERNAL",
		}
	}
}
