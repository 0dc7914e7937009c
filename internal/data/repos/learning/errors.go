package learning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/dmhernandez2525/learning-hall/internal/platform/apierr"
)

// MapError turns driver failures into API errors. Errors that are already *apierr.Error
// pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.From(err); ok {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound("not_found", wrapped)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, "request_cancelled", wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apierr.Conflict("conflict", wrapped) // unique_violation
		case "23503":
			return apierr.New(http.StatusPreconditionFailed, "precondition_failed", wrapped) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return apierr.New(http.StatusServiceUnavailable, "retryable", wrapped)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "unique constraint failed"):
		return apierr.Conflict("conflict", wrapped)
	case strings.Contains(msg, "foreign key constraint failed"):
		return apierr.New(http.StatusPreconditionFailed, "precondition_failed", wrapped)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"):
		return apierr.New(http.StatusServiceUnavailable, "retryable", wrapped)
	default:
		return wrapped
	}
}
