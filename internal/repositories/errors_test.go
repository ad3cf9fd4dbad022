package repositories

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"sales_backend/internal/catalog"
	"sales_backend/internal/models"
)

func TestDuplicateEntry(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:   "23505",
		Detail: "Key (des_pro)=(Laptop 14) already exists.",
	})
	col, val, ok := DuplicateEntry(err)
	assert.True(t, ok)
	assert.Equal(t, "des_pro", col)
	assert.Equal(t, "Laptop 14", val)

	_, _, ok = DuplicateEntry(&pgconn.PgError{Code: "23505"})
	assert.False(t, ok)
	_, _, ok = DuplicateEntry(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)
}

func TestTranslateWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"duplicate with detail", &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@b.c) already exists."}, http.StatusBadRequest, models.CodeDuplicateEntry},
		{"duplicate without detail", &pgconn.PgError{Code: "23505", Message: "duplicate"}, http.StatusBadRequest, models.CodeIntegrityError},
		{"not null", &pgconn.PgError{Code: "23502", Message: "null value"}, http.StatusBadRequest, models.CodeIntegrityError},
		{"invalid column", invalidColumn("seller", "x"), http.StatusBadRequest, ""},
		{"unknown table", fmt.Errorf("%w: %q", catalog.ErrTableNotFound, "x"), http.StatusNotFound, ""},
		{"engine failure", &pgconn.PgError{Code: "08006", Message: "connection lost"}, http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := translateWriteError("Bulk create failed", tt.err)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.code, res.ErrorCode)
		})
	}

	res := translateWriteError("x", &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@b.c) already exists."})
	assert.Equal(t, "A record with value 'a@b.c' already exists for column 'email'", res.Message)
}

func TestTranslateDeleteError(t *testing.T) {
	res := translateDeleteError(&pgconn.PgError{Code: "23503"})
	assert.Equal(t, models.CodeForeignKeyConstraint, res.ErrorCode)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = translateDeleteError(&pgconn.PgError{Code: "57014", Message: "canceling statement"})
	assert.Equal(t, models.CodeDeleteError, res.ErrorCode)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}
