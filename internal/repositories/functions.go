package repositories

import (
	"context"
	"sort"
	"strings"

	"sales_backend/internal/models"
)

// ColumnArg references a catalog column as a function argument.
type ColumnArg struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// sqlFunction describes one entry of the allow-list. casts[i] is applied to
// literal argument i; the last cast repeats for variadic functions. An empty
// cast leaves the literal typed by the first column argument, or text.
type sqlFunction struct {
	minArgs   int
	maxArgs   int // -1 means unbounded
	aggregate bool
	casts     []string
	keyword   bool // rendered without parentheses, e.g. current_date
}

var allowedFunctions = map[string]sqlFunction{
	"count":        {minArgs: 1, maxArgs: 1, aggregate: true},
	"sum":          {minArgs: 1, maxArgs: 1, aggregate: true},
	"avg":          {minArgs: 1, maxArgs: 1, aggregate: true},
	"min":          {minArgs: 1, maxArgs: 1, aggregate: true},
	"max":          {minArgs: 1, maxArgs: 1, aggregate: true},
	"now":          {},
	"current_date": {keyword: true},
	"lower":        {minArgs: 1, maxArgs: 1, casts: []string{"text"}},
	"upper":        {minArgs: 1, maxArgs: 1, casts: []string{"text"}},
	"length":       {minArgs: 1, maxArgs: 1, casts: []string{"text"}},
	"abs":          {minArgs: 1, maxArgs: 1, casts: []string{"numeric"}},
	"round":        {minArgs: 1, maxArgs: 2, casts: []string{"numeric", "integer"}},
	"coalesce":     {minArgs: 1, maxArgs: -1},
}

// AllowedFunctions lists the callable function names.
func AllowedFunctions() []string {
	names := make([]string, 0, len(allowedFunctions))
	for n := range allowedFunctions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (f sqlFunction) castFor(i int) string {
	if len(f.casts) == 0 {
		return ""
	}
	if i < len(f.casts) {
		return f.casts[i]
	}
	return f.casts[len(f.casts)-1]
}

// buildFunctionCall renders SELECT fn(args) [FROM table]. Column arguments
// are resolved through the catalog and must all belong to one table.
func (r *CrudRepository) buildFunctionCall(ctx context.Context, name string, args []any) (string, []any, error) {
	fn, ok := allowedFunctions[strings.ToLower(name)]
	if !ok {
		return "", nil, ErrUnknownFunction
	}
	name = strings.ToLower(name)
	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return "", nil, validationf("function %q does not take %d arguments", name, len(args))
	}

	var (
		from     *models.TableDefinition
		litType  string
		rendered = make([]string, len(args))
		binds    = &argList{}
	)

	for _, a := range args {
		col, isCol := a.(ColumnArg)
		if !isCol {
			continue
		}
		table, err := r.catalog.Resolve(ctx, col.Table)
		if err != nil {
			return "", nil, err
		}
		def, ok := table.Column(col.Column)
		if !ok {
			return "", nil, invalidColumn(table.Name, col.Column)
		}
		if from != nil && from.Name != table.Name {
			return "", nil, validationf("column arguments must share one table, got %q and %q", from.Name, table.Name)
		}
		from = table
		if litType == "" && castable(def.DataType) {
			litType = def.DataType
		}
	}
	if fn.aggregate && from == nil {
		return "", nil, validationf("function %q requires a column argument", name)
	}

	for i, a := range args {
		if col, isCol := a.(ColumnArg); isCol {
			rendered[i] = quoteIdent(col.Column)
			continue
		}
		if a == nil {
			rendered[i] = "NULL"
			continue
		}
		cast := fn.castFor(i)
		if cast == "" {
			cast = litType
		}
		if cast == "" {
			cast = "text"
		}
		rendered[i] = binds.add(a) + "::" + cast
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(name)
	if !fn.keyword {
		sb.WriteString("(")
		sb.WriteString(strings.Join(rendered, ", "))
		sb.WriteString(")")
	}
	if from != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(quoteTable(from))
	}
	return sb.String(), binds.values, nil
}

// castable reports whether an information_schema data_type can be used
// verbatim as a cast target.
func castable(dataType string) bool {
	switch dataType {
	case "", "USER-DEFINED", "ARRAY":
		return false
	}
	return true
}
