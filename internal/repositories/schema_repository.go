package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sales_backend/internal/models"
)

// Querier is the read side shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SchemaRepository introspects information_schema for one database schema.
type SchemaRepository struct {
	db     Querier
	schema string
}

func NewSchemaRepository(db Querier, schema string) *SchemaRepository {
	if schema == "" {
		schema = "public"
	}
	return &SchemaRepository{db: db, schema: schema}
}

type tableRow struct {
	name   string
	isView bool
}

// GetTables returns every base table and view in the schema.
func (r *SchemaRepository) GetTables(ctx context.Context) ([]tableRow, error) {
	query := `
		SELECT table_name, table_type = 'VIEW'
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableRow
	for rows.Next() {
		var t tableRow
		if err := rows.Scan(&t.name, &t.isView); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetColumns returns the columns of every table, keyed by table name.
func (r *SchemaRepository) GetColumns(ctx context.Context) (map[string][]models.ColumnDefinition, error) {
	query := `
		SELECT table_name, column_name, data_type, is_nullable, column_default IS NOT NULL OR is_identity = 'YES'
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string][]models.ColumnDefinition)
	for rows.Next() {
		var table, nullable string
		var col models.ColumnDefinition
		if err := rows.Scan(&table, &col.Name, &col.DataType, &nullable, &col.HasDefault); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		columns[table] = append(columns[table], col)
	}
	return columns, rows.Err()
}

// GetPrimaryKeys returns the primary key columns of every table.
func (r *SchemaRepository) GetPrimaryKeys(ctx context.Context) (map[string][]string, error) {
	query := `
		SELECT tc.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
		ORDER BY tc.table_name, kcu.ordinal_position
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pks := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, err
		}
		pks[table] = append(pks[table], column)
	}
	return pks, rows.Err()
}

// GetForeignKeys returns the foreign keys of every table.
func (r *SchemaRepository) GetForeignKeys(ctx context.Context) (map[string][]models.ForeignKeyDefinition, error) {
	query := `
		SELECT
			tc.table_name,
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
		ORDER BY tc.table_name, tc.constraint_name
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fks := make(map[string][]models.ForeignKeyDefinition)
	for rows.Next() {
		var table string
		var fk models.ForeignKeyDefinition
		if err := rows.Scan(&table, &fk.ConstraintName, &fk.FromColumn, &fk.ToTable, &fk.ToColumn); err != nil {
			return nil, err
		}
		fks[table] = append(fks[table], fk)
	}
	return fks, rows.Err()
}

// LoadTables assembles full table definitions for the schema.
func (r *SchemaRepository) LoadTables(ctx context.Context) ([]*models.TableDefinition, error) {
	tables, err := r.GetTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	columns, err := r.GetColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	pks, err := r.GetPrimaryKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary keys: %w", err)
	}
	fks, err := r.GetForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}

	defs := make([]*models.TableDefinition, 0, len(tables))
	for _, t := range tables {
		def := buildTableDefinition(t.name, t.isView, columns[t.name], pks[t.name], fks[t.name])
		def.Schema = r.schema
		defs = append(defs, def)
	}
	return defs, nil
}

func buildTableDefinition(name string, isView bool, cols []models.ColumnDefinition, pks []string, fks []models.ForeignKeyDefinition) *models.TableDefinition {
	pkSet := make(map[string]struct{}, len(pks))
	for _, pk := range pks {
		pkSet[pk] = struct{}{}
	}
	out := make([]models.ColumnDefinition, len(cols))
	for i, c := range cols {
		_, c.PrimaryKey = pkSet[c.Name]
		out[i] = c
	}
	return models.NewTableDefinition(name, isView, out, fks)
}
