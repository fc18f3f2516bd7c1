package repository

import (
	"context"
	"errors"
	"strings"

	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err came from a unique index. It
// recognizes the translated gorm error, raw Postgres errors and SQLite text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and wraps anything else.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func traced(ctx context.Context, method, table string) (context.Context, trace.Span) {
	return observability.TraceRepositoryMethod(ctx, method, table)
}
