package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	serialization := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})
	deadlock := &pgconn.PgError{Code: "40P01"}
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_order_number"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "chk_products_stock_non_negative"}

	assert.True(t, IsRetryable(serialization))
	assert.True(t, IsRetryable(deadlock))
	assert.False(t, IsRetryable(unique))
	assert.False(t, IsRetryable(errors.New("boom")))

	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique), "idx_orders_order_number"))
	assert.False(t, IsUniqueViolation(unique, "idx_categories_name"))
	assert.False(t, IsUniqueViolation(deadlock, ""))

	assert.True(t, IsCheckViolation(check, "chk_products_stock_non_negative"))
	assert.False(t, IsCheckViolation(unique, ""))
}
