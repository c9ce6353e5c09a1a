package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapClassifiesDriverErrors(t *testing.T) {
	assert.NoError(t, wrap("get transaction", nil))

	err := wrap("get transaction", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	pgErr := &pgconn.PgError{Code: "23514", Message: "check violation"}
	err = wrap("create offer", pgErr)
	assert.False(t, errors.Is(err, domain.ErrTransport))
	assert.ErrorContains(t, err, "failed to create offer")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: uniqueViolation}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestTextToPgType(t *testing.T) {
	assert.False(t, textToPgType("").Valid)
	v := textToPgType("tx-1:completed")
	assert.True(t, v.Valid)
	assert.Equal(t, "tx-1:completed", v.String)
}

func TestIsMissingCoversBadUUID(t *testing.T) {
	assert.True(t, isMissing(pgx.ErrNoRows))
	assert.True(t, isMissing(&pgconn.PgError{Code: invalidText, Message: "invalid input syntax for type uuid"}))
	assert.True(t, isInvalidUUID(fmt.Errorf("get: %w", &pgconn.PgError{Code: invalidText})))
	assert.False(t, isMissing(&pgconn.PgError{Code: uniqueViolation}))
	assert.False(t, isMissing(context.DeadlineExceeded))
	assert.False(t, isMissing(nil))
}
