package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"launchdb/internal/ddl"
	"launchdb/internal/spec"
)

// GenerateRows produces n plausible sample rows for a table definition.
// Auto-increment primary keys are left to the database.
func GenerateRows(table spec.TableDefinition, n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any)
		for _, col := range table.Columns {
			if col.PrimaryKey && ddl.IsSerial(col.Type) {
				continue
			}
			// Columns carrying a reference need existing parent rows; the
			// seeder has no FK pool, so nullable references stay NULL and
			// required ones assume the parent's first serial id.
			if col.References != "" {
				if !col.NotNull && !col.PrimaryKey {
					continue
				}
				row[col.Name] = 1
				continue
			}
			row[col.Name] = generateValue(col)
		}
		rows = append(rows, row)
	}
	return rows
}

// generateValue picks a value from the mapped physical type, refined by
// column-name heuristics for the common string shapes.
func generateValue(col spec.ColumnDefinition) any {
	phys := ddl.MapType(col.Type)
	name := strings.ToLower(col.Name)

	switch {
	case strings.HasPrefix(phys, "VARCHAR"), strings.HasPrefix(phys, "CHAR"), phys == "TEXT":
		return truncate(generateText(name, phys), varcharLimit(phys))
	case phys == "INTEGER", phys == "SERIAL":
		if strings.Contains(name, "year") {
			return 2000 + gofakeit.Number(0, 26)
		}
		return gofakeit.Number(1, 50000)
	case phys == "BIGINT", phys == "BIGSERIAL":
		return gofakeit.Number(1, 1_000_000)
	case phys == "SMALLINT", phys == "SMALLSERIAL":
		return gofakeit.Number(1, 30000)
	case strings.HasPrefix(phys, "DECIMAL"), phys == "REAL", phys == "DOUBLE PRECISION":
		return gofakeit.Price(0.99, 9999.99)
	case phys == "BOOLEAN":
		return gofakeit.Bool()
	case phys == "DATE":
		return gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).Format("2006-01-02")
	case phys == "TIME":
		return gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).Format("15:04:05")
	case phys == "TIMESTAMP", phys == "TIMESTAMPTZ":
		return gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).Format("2006-01-02 15:04:05")
	case phys == "JSON", phys == "JSONB":
		return fmt.Sprintf(`{"note": %q}`, gofakeit.Sentence(4))
	case phys == "UUID":
		return gofakeit.UUID()
	}
	return nil
}

func generateText(name, phys string) string {
	isID := strings.HasSuffix(name, "id") || strings.HasSuffix(name, "_id")
	switch {
	case !isID && strings.Contains(name, "email"):
		return gofakeit.Email()
	case !isID && strings.Contains(name, "phone"):
		return gofakeit.Phone()
	case !isID && (strings.Contains(name, "first") || strings.Contains(name, "last")):
		return gofakeit.LastName()
	case !isID && strings.Contains(name, "name"):
		return gofakeit.Name()
	case !isID && strings.Contains(name, "address"):
		return gofakeit.Address().Address
	case !isID && strings.Contains(name, "city"):
		return gofakeit.City()
	case !isID && strings.Contains(name, "country"):
		return gofakeit.Country()
	case strings.Contains(name, "zip") || strings.Contains(name, "postal"):
		return gofakeit.Zip()
	case !isID && strings.Contains(name, "url"):
		return gofakeit.URL()
	case !isID && (strings.Contains(name, "description") || strings.Contains(name, "comment") || strings.Contains(name, "note")):
		return gofakeit.Sentence(10)
	case !isID && strings.Contains(name, "title"):
		return gofakeit.Sentence(3)
	case strings.Contains(name, "status"):
		return gofakeit.RandomString([]string{"active", "pending", "archived"})
	}
	return gofakeit.Sentence(3)
}

// varcharLimit extracts the length cap from a rendered VARCHAR(n)/CHAR(n)
// physical type; 0 means unbounded.
func varcharLimit(phys string) int {
	open := strings.Index(phys, "(")
	if open < 0 || !strings.HasSuffix(phys, ")") {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(phys[open:], "(%d)", &n); err != nil {
		return 0
	}
	return n
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
