package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/example/etailor/internal/apperrors"
)

func TestTranslateMapsDriverErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, apperrors.ErrNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, apperrors.ErrConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, apperrors.ErrConflict},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), apperrors.ErrConflict},
		{"connection failure", &pgconn.PgError{Code: "08006"}, apperrors.ErrUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, apperrors.ErrUnavailable},
		{"query timeout", context.DeadlineExceeded, apperrors.ErrUnavailable},
		{"bad connection", driver.ErrBadConn, apperrors.ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := translate(tc.err, "order %d", 1)
			assert.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "order 1")
		})
	}
}

func TestTranslatePassesOtherErrorsThrough(t *testing.T) {
	assert.NoError(t, translate(nil, "noop"))

	check := &pgconn.PgError{Code: "23514"}
	err := translate(check, "save measurement")
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
	assert.False(t, apperrors.IsRetryable(err))
	assert.NotErrorIs(t, err, apperrors.ErrConflict)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnreachable(t *testing.T) {
	assert.True(t, unreachable(&pgconn.PgError{Code: "08001"}))
	assert.True(t, unreachable(&pgconn.PgError{Code: "57P03"}))
	assert.False(t, unreachable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, unreachable(errors.New("syntax error")))
}
