package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales_backend/internal/catalog"
	"sales_backend/internal/models"
)

type mapResolver map[string]*models.TableDefinition

func (m mapResolver) Resolve(_ context.Context, name string) (*models.TableDefinition, error) {
	if t, ok := m[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", catalog.ErrTableNotFound, name)
}

func productTable() *models.TableDefinition {
	return models.NewTableDefinition("product", false, []models.ColumnDefinition{
		{Name: "cod_pro", DataType: "integer", PrimaryKey: true},
		{Name: "des_pro", DataType: "text"},
		{Name: "pre_pro", DataType: "numeric"},
	}, nil)
}

func TestBuildFunctionCall(t *testing.T) {
	repo := &CrudRepository{catalog: mapResolver{"product": productTable(), "seller": sellerTable()}}
	ctx := context.Background()

	tests := []struct {
		name string
		fn   string
		args []any
		sql  string
		bind []any
	}{
		{"aggregate over column", "sum", []any{ColumnArg{Table: "product", Column: "pre_pro"}}, `SELECT sum("pre_pro") FROM "product"`, nil},
		{"name is case insensitive", "COUNT", []any{ColumnArg{Table: "product", Column: "cod_pro"}}, `SELECT count("cod_pro") FROM "product"`, nil},
		{"keyword without parentheses", "current_date", nil, `SELECT current_date`, nil},
		{"no args", "now", nil, `SELECT now()`, nil},
		{"literal cast", "upper", []any{"ana"}, `SELECT upper($1::text)`, []any{"ana"}},
		{"round with precision", "round", []any{3.14159, int64(2)}, `SELECT round($1::numeric, $2::integer)`, []any{3.14159, int64(2)}},
		{"coalesce typed by column", "coalesce", []any{ColumnArg{Table: "product", Column: "pre_pro"}, 0}, `SELECT coalesce("pre_pro", $1::numeric) FROM "product"`, []any{0}},
		{"coalesce literals default to text", "coalesce", []any{nil, "x"}, `SELECT coalesce(NULL, $1::text)`, []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, binds, err := repo.buildFunctionCall(ctx, tt.fn, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.bind, binds)
		})
	}
}

func TestBuildFunctionCall_Rejects(t *testing.T) {
	repo := &CrudRepository{catalog: mapResolver{"product": productTable(), "seller": sellerTable()}}
	ctx := context.Background()

	_, _, err := repo.buildFunctionCall(ctx, "pg_sleep", []any{10})
	assert.ErrorIs(t, err, ErrUnknownFunction)

	_, _, err = repo.buildFunctionCall(ctx, "upper", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = repo.buildFunctionCall(ctx, "sum", []any{5})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = repo.buildFunctionCall(ctx, "coalesce", []any{
		ColumnArg{Table: "product", Column: "des_pro"},
		ColumnArg{Table: "seller", Column: "nom_ven"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = repo.buildFunctionCall(ctx, "max", []any{ColumnArg{Table: "product", Column: "nope"}})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, _, err = repo.buildFunctionCall(ctx, "max", []any{ColumnArg{Table: "ghost", Column: "x"}})
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)
}

func TestAllowedFunctions_Sorted(t *testing.T) {
	names := AllowedFunctions()
	assert.Contains(t, names, "coalesce")
	assert.IsNonDecreasing(t, names)
}
