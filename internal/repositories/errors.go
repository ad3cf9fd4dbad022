package repositories

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidColumn is returned when a payload, filter or ordering names a
	// column the table does not have.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrInvalidOperator is returned for boolean operators other than and/or.
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrValidation marks caller mistakes detected before or during a write.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownFunction is returned for names outside the function allow-list.
	ErrUnknownFunction = errors.New("unknown function")

	errRecordNotFound = errors.New("record not found")
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgIntegrityClass      = "23"
)

func invalidColumn(table, column string) error {
	return fmt.Errorf("%w: column %q does not exist in table %q", ErrInvalidColumn, column, table)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsIntegrityViolation reports any SQLSTATE class 23 error.
func IsIntegrityViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && strings.HasPrefix(pgErr.Code, pgIntegrityClass)
}

func IsUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgForeignKeyViolation
}

var duplicateKeyDetail = regexp.MustCompile(`^Key \((.+?)\)=\((.*)\) already exists\.?$`)

// DuplicateEntry extracts the offending column and value from a unique
// violation. ok is false when the engine did not report them.
func DuplicateEntry(err error) (column, value string, ok bool) {
	if !IsUniqueViolation(err) {
		return "", "", false
	}
	pgErr, _ := pgError(err)
	if m := duplicateKeyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
		return m[1], m[2], true
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName, "", true
	}
	return "", "", false
}

// engineMessage returns the short engine message without SQLSTATE noise.
func engineMessage(err error) string {
	if pgErr, ok := pgError(err); ok {
		if pgErr.Detail != "" {
			return pgErr.Message + ": " + pgErr.Detail
		}
		return pgErr.Message
	}
	return err.Error()
}
