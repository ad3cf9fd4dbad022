package services

import (
	"fmt"
	"slices"
	"strings"

	"sales_backend/internal/models"
)

const (
	maxJunctionTableColumns = 6
	minJunctionTableFKs     = 2
)

// TableLister returns the loaded catalog. *catalog.Catalog implements it.
type TableLister interface {
	Tables() ([]*models.TableDefinition, error)
}

type SchemaService struct {
	catalog TableLister
}

func NewSchemaService(catalog TableLister) *SchemaService {
	return &SchemaService{catalog: catalog}
}

// Tables returns every table and view of the catalog.
func (s *SchemaService) Tables() ([]*models.TableDefinition, error) {
	return s.catalog.Tables()
}

// Diagram renders the base tables of the catalog as a Mermaid ER diagram.
func (s *SchemaService) Diagram() (string, error) {
	all, err := s.catalog.Tables()
	if err != nil {
		return "", err
	}
	tables := make([]*models.TableDefinition, 0, len(all))
	for _, t := range all {
		if !t.IsView {
			tables = append(tables, t)
		}
	}
	return generateMermaid(tables, buildRelationships(tables)), nil
}

func buildRelationships(tables []*models.TableDefinition) []models.Relationship {
	var relationships []models.Relationship
	junctionTables := detectJunctionTables(tables)

	for _, table := range tables {
		// Junction tables become many-to-many edges between the tables they join.
		if junctionTables[table.Name] {
			for i := 0; i < len(table.ForeignKeys); i++ {
				for j := i + 1; j < len(table.ForeignKeys); j++ {
					relationships = append(relationships, models.Relationship{
						FromTable: table.ForeignKeys[i].ToTable,
						ToTable:   table.ForeignKeys[j].ToTable,
						Type:      "}o--o{",
					})
				}
			}
			continue
		}

		pks := table.PrimaryKeys()
		for _, fk := range table.ForeignKeys {
			relType := "||--o{" // one-to-many
			if len(pks) == 1 && pks[0] == fk.FromColumn {
				relType = "||--||" // a lone primary key is unique
			}
			relationships = append(relationships, models.Relationship{
				FromTable: table.Name,
				ToTable:   fk.ToTable,
				Type:      relType,
			})
		}
	}
	return relationships
}

// detectJunctionTables flags tables whose primary key is made of at least
// two foreign keys and which carry few other columns.
func detectJunctionTables(tables []*models.TableDefinition) map[string]bool {
	junctionTables := make(map[string]bool)
	for _, table := range tables {
		pks := table.PrimaryKeys()
		if len(table.ForeignKeys) < minJunctionTableFKs ||
			len(pks) < minJunctionTableFKs ||
			len(table.Columns) > maxJunctionTableColumns {
			continue
		}
		allFKsInPK := true
		for _, fk := range table.ForeignKeys {
			if !slices.Contains(pks, fk.FromColumn) {
				allFKsInPK = false
				break
			}
		}
		if allFKsInPK {
			junctionTables[table.Name] = true
		}
	}
	return junctionTables
}

func generateMermaid(tables []*models.TableDefinition, relationships []models.Relationship) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	if len(relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range relationships {
			key := fmt.Sprintf("%s:%s:%s", rel.FromTable, rel.Type, rel.ToTable)
			if seen[key] {
				continue
			}
			seen[key] = true

			// Mermaid requires a label, an empty one hides it.
			fmt.Fprintf(&sb, "    %s %s %s : \"\"\n",
				strings.ToUpper(rel.FromTable),
				rel.Type,
				strings.ToUpper(rel.ToTable))
		}
		sb.WriteString("\n")
	}

	for _, table := range tables {
		fmt.Fprintf(&sb, "    %s {\n", strings.ToUpper(table.Name))
		for _, col := range table.Columns {
			annotations := ""
			if col.PrimaryKey {
				annotations = " PK"
			}
			if isForeignKey(table.ForeignKeys, col.Name) {
				annotations += " FK"
			}
			fmt.Fprintf(&sb, "        %s %s%s\n", simplifyDataType(col.DataType), col.Name, annotations)
		}
		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

func simplifyDataType(dataType string) string {
	dt := strings.ToLower(dataType)

	switch {
	case dt == "integer":
		return "int"
	case strings.HasPrefix(dt, "character varying"):
		return "varchar"
	case strings.HasPrefix(dt, "character"):
		return "char"
	case strings.HasPrefix(dt, "timestamp without time zone"):
		return "timestamp"
	case strings.HasPrefix(dt, "timestamp with time zone"):
		return "timestamptz"
	case strings.HasPrefix(dt, "time without time zone"):
		return "time"
	case dt == "double precision":
		return "double"
	case strings.HasPrefix(dt, "numeric"):
		return "numeric"
	case strings.HasPrefix(dt, "array"):
		return "array"
	default:
		return dt
	}
}

func isForeignKey(fks []models.ForeignKeyDefinition, colName string) bool {
	for _, fk := range fks {
		if fk.FromColumn == colName {
			return true
		}
	}
	return false
}
