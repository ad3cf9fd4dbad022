package models

// ColumnDefinition describes one column of a table or view.
type ColumnDefinition struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
	HasDefault bool   `json:"has_default"`
}

type ForeignKeyDefinition struct {
	ConstraintName string `json:"constraint_name"`
	FromColumn     string `json:"from_column"`
	ToTable        string `json:"to_table"`
	ToColumn       string `json:"to_column"`
}

// TableDefinition is an immutable snapshot of a table (or view) loaded from
// the live database.
type TableDefinition struct {
	Schema      string                 `json:"schema,omitempty"`
	Name        string                 `json:"name"`
	IsView      bool                   `json:"is_view"`
	Columns     []ColumnDefinition     `json:"columns"`
	ForeignKeys []ForeignKeyDefinition `json:"foreign_keys,omitempty"`

	index map[string]int
}

// NewTableDefinition builds a definition and its column index.
func NewTableDefinition(name string, isView bool, columns []ColumnDefinition, fks []ForeignKeyDefinition) *TableDefinition {
	t := &TableDefinition{
		Name:        name,
		IsView:      isView,
		Columns:     columns,
		ForeignKeys: fks,
		index:       make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c.Name] = i
	}
	return t
}

// Column looks a column up by name.
func (t *TableDefinition) Column(name string) (ColumnDefinition, bool) {
	i, ok := t.index[name]
	if !ok {
		return ColumnDefinition{}, false
	}
	return t.Columns[i], true
}

func (t *TableDefinition) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// PrimaryKey returns the first column flagged as primary key. Composite keys
// report only their first column.
func (t *TableDefinition) PrimaryKey() (string, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c.Name, true
		}
	}
	return "", false
}

func (t *TableDefinition) PrimaryKeys() []string {
	var pks []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
	}
	return pks
}

// ForeignKeyTo returns the first foreign key of t that references table.
func (t *TableDefinition) ForeignKeyTo(table string) (ForeignKeyDefinition, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.ToTable == table {
			return fk, true
		}
	}
	return ForeignKeyDefinition{}, false
}

// Relationship is an edge of the ER diagram.
type Relationship struct {
	FromTable string
	ToTable   string
	Type      string // "||--o{", "||--||", "}o--o{"
}
