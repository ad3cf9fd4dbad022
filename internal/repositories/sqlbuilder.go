package repositories

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"sales_backend/internal/models"
)

const returningAll = "*"

// argList numbers bind parameters in the order they are added.
type argList struct {
	values []any
}

func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteTable(t *models.TableDefinition) string {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}.Sanitize()
	}
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

func checkColumns(table *models.TableDefinition, rec models.Record) error {
	_, unknown := rec.Columns(table)
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return invalidColumn(table.Name, unknown[0])
}

// buildInsert renders a single or multi-row INSERT. Columns are the union of
// the row keys in table order; a row missing a column gets DEFAULT.
// returning is "", returningAll or a column name.
func buildInsert(table *models.TableDefinition, rows []models.Record, returning string) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, validationf("no rows to insert into %q", table.Name)
	}

	present := make(map[string]struct{})
	for _, row := range rows {
		if err := checkColumns(table, row); err != nil {
			return "", nil, err
		}
		for k := range row {
			present[k] = struct{}{}
		}
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quoteTable(table))

	var cols []string
	for _, c := range table.Columns {
		if _, ok := present[c.Name]; ok {
			cols = append(cols, c.Name)
		}
	}

	args := &argList{}
	switch {
	case len(cols) == 0 && len(rows) == 1:
		sb.WriteString(" DEFAULT VALUES")
	default:
		if len(cols) == 0 {
			if len(table.Columns) == 0 {
				return "", nil, validationf("table %q has no columns", table.Name)
			}
			cols = []string{table.Columns[0].Name}
		}
		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = quoteIdent(c)
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString(") VALUES ")
		for i, row := range rows {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(")
			for j, c := range cols {
				if j > 0 {
					sb.WriteString(", ")
				}
				if v, ok := row[c]; ok {
					sb.WriteString(args.add(v))
				} else {
					sb.WriteString("DEFAULT")
				}
			}
			sb.WriteString(")")
		}
	}

	switch returning {
	case "":
	case returningAll:
		sb.WriteString(" RETURNING *")
	default:
		sb.WriteString(" RETURNING ")
		sb.WriteString(quoteIdent(returning))
	}
	return sb.String(), args.values, nil
}

// buildFilters renders the paginated-read predicate. Strings become a
// case-insensitive substring match, other values equality. Empty strings
// and nil values are skipped. An empty result means no WHERE clause.
func buildFilters(table *models.TableDefinition, filters models.Record, operator string, args *argList) (string, error) {
	joiner := " AND "
	if operator == "or" {
		joiner = " OR "
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conds []string
	for _, col := range keys {
		v := filters[col]
		if v == nil {
			continue
		}
		s, isString := v.(string)
		if isString && s == "" {
			continue
		}
		if !table.HasColumn(col) {
			return "", invalidColumn(table.Name, col)
		}
		if isString {
			conds = append(conds, "CAST("+quoteIdent(col)+" AS TEXT) ILIKE "+args.add("%"+escapeLike(s)+"%"))
		} else {
			conds = append(conds, quoteIdent(col)+" = "+args.add(v))
		}
	}
	return strings.Join(conds, joiner), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func whereClause(pred string) string {
	if pred == "" {
		return ""
	}
	return " WHERE " + pred
}

func buildCount(table *models.TableDefinition, pred string) string {
	return "SELECT count(*) FROM " + quoteTable(table) + whereClause(pred)
}

func buildPageSelect(table *models.TableDefinition, pred string, args *argList, orderBy string, desc bool, limit, offset int) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return "SELECT * FROM " + quoteTable(table) + whereClause(pred) +
		" ORDER BY " + quoteIdent(orderBy) + " " + dir +
		" LIMIT " + args.add(limit) + " OFFSET " + args.add(offset)
}

func buildSelectEqual(table *models.TableDefinition, column string, value any) (string, []any, error) {
	sql := "SELECT * FROM " + quoteTable(table)
	if column == "" || value == nil {
		return sql, nil, nil
	}
	if !table.HasColumn(column) {
		return "", nil, invalidColumn(table.Name, column)
	}
	return sql + " WHERE " + quoteIdent(column) + " = $1", []any{value}, nil
}

// buildUpdate sets every column of values and filters by equality on the
// value values[filterColumn] carries.
func buildUpdate(table *models.TableDefinition, values models.Record, filterColumn string) (string, []any, error) {
	if !table.HasColumn(filterColumn) {
		return "", nil, invalidColumn(table.Name, filterColumn)
	}
	if err := checkColumns(table, values); err != nil {
		return "", nil, err
	}
	filterValue, ok := values[filterColumn]
	if !ok {
		return "", nil, errors.New("filter column missing from values")
	}

	args := &argList{}
	var sets []string
	for _, c := range table.Columns {
		if v, ok := values[c.Name]; ok {
			sets = append(sets, quoteIdent(c.Name)+" = "+args.add(v))
		}
	}
	sql := "UPDATE " + quoteTable(table) + " SET " + strings.Join(sets, ", ") +
		" WHERE " + quoteIdent(filterColumn) + " = " + args.add(filterValue)
	return sql, args.values, nil
}

func buildExists(table *models.TableDefinition, column string, value any) (string, []any, error) {
	if !table.HasColumn(column) {
		return "", nil, invalidColumn(table.Name, column)
	}
	return "SELECT 1 FROM " + quoteTable(table) + " WHERE " + quoteIdent(column) + " = $1 LIMIT 1", []any{value}, nil
}

func buildDelete(table *models.TableDefinition, column string, value any) (string, []any, error) {
	if !table.HasColumn(column) {
		return "", nil, invalidColumn(table.Name, column)
	}
	return "DELETE FROM " + quoteTable(table) + " WHERE " + quoteIdent(column) + " = $1", []any{value}, nil
}
