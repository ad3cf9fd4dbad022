package models

// Record maps column names to scalar values. Records produced by the codec
// never hold nil values.
type Record map[string]any

// Columns returns the keys of r ordered as they appear in table; keys that
// are not columns of table are returned separately.
func (r Record) Columns(table *TableDefinition) (known []string, unknown []string) {
	for _, c := range table.Columns {
		if _, ok := r[c.Name]; ok {
			known = append(known, c.Name)
		}
	}
	for k := range r {
		if !table.HasColumn(k) {
			unknown = append(unknown, k)
		}
	}
	return known, unknown
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// TableBatch is one entry of an atomic multi-table insert. Order of batches
// is the order of execution.
type TableBatch struct {
	Table string `json:"table" binding:"required"`
	Rows  []any  `json:"rows"`
}

// TableUpdate is one entry of an atomic multi-table update.
type TableUpdate struct {
	Table        string `json:"table" binding:"required"`
	FilterColumn string `json:"filter_column"`
	Data         []any  `json:"data"`
}

// PageQuery holds the arguments of a paginated read.
type PageQuery struct {
	Filters        map[string]any `json:"filters"`
	Page           int            `json:"page"`
	Limit          int            `json:"limit"`
	Operator       string         `json:"operator"`
	OrderBy        string         `json:"order_by"`
	OrderDirection string         `json:"order_direction"`
}

type PageMetadata struct {
	TotalRecords int64 `json:"total_records"`
	CurrentPage  int   `json:"current_page"`
	Limit        int   `json:"limit"`
	TotalPages   int64 `json:"total_pages"`
}

type Page struct {
	Metadata PageMetadata `json:"metadata"`
	Data     []Record     `json:"data"`
}

// TotalPages is ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
