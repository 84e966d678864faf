package ddl

import (
	"fmt"
	"log"
	"strings"

	"launchdb/internal/spec"
)

// tenantTag is the fixed leading tag on every physical table name.
const tenantTag = "app"

// TenantPrefix derives the deterministic namespace prefix for a tenant.
// Every physical object of the tenant carries this prefix, which is how
// tenants coexist inside one shared schema.
func TenantPrefix(tenantID string) string {
	return tenantTag + "_" + Sanitize(tenantID)
}

// PhysicalTableName returns the namespaced physical name for a logical table.
func PhysicalTableName(tenantID, table string) string {
	return TenantPrefix(tenantID) + "_" + Sanitize(table)
}

// BuildCreateTable synthesizes the CREATE TABLE statement for one table
// definition. IF NOT EXISTS makes re-provisioning a no-op for tables
// that already exist.
func BuildCreateTable(tenantID string, table spec.TableDefinition) string {
	phys := PhysicalTableName(tenantID, table.Name)

	cols := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		cols = append(cols, buildColumn(col))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		QuoteIdent(phys), strings.Join(cols, ", "))
}

func buildColumn(col spec.ColumnDefinition) string {
	var b strings.Builder
	b.WriteString(QuoteIdent(Sanitize(col.Name)))
	b.WriteByte(' ')

	if col.PrimaryKey && IsSerial(col.Type) {
		// SERIAL PRIMARY KEY form instead of "SERIAL" + "PRIMARY KEY" suffix.
		b.WriteString(MapType(col.Type))
		b.WriteString(" PRIMARY KEY")
		return b.String()
	}

	b.WriteString(MapType(col.Type))
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	} else if col.NotNull {
		// PRIMARY KEY already implies NOT NULL.
		b.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		if expr, ok := SafeDefault(col.Default); ok {
			b.WriteString(" DEFAULT ")
			b.WriteString(expr)
		} else {
			log.Printf("Warning: dropping unsafe default %q for column %s", col.Default, col.Name)
		}
	}
	return b.String()
}

// BuildForeignKeys synthesizes one ALTER TABLE ... ADD CONSTRAINT
// statement per column carrying a references marker. Statements are
// emitted separately from CREATE TABLE so that a column may reference a
// table defined later in the same batch; the caller runs them in a
// second pass once every table exists.
//
// Each statement is wrapped so an already-existing constraint is
// swallowed, keeping repeated provisioning runs clean. The constraint
// name is deterministic for the same reason.
func BuildForeignKeys(tenantID string, table spec.TableDefinition) []string {
	var stmts []string
	phys := PhysicalTableName(tenantID, table.Name)

	for _, col := range table.Columns {
		if col.References == "" {
			continue
		}
		refTable, refColumn, ok := strings.Cut(col.References, ".")
		if !ok || refTable == "" || refColumn == "" {
			log.Printf("Warning: skipping malformed reference %q on column %s", col.References, col.Name)
			continue
		}

		colName := Sanitize(col.Name)
		constraint := fmt.Sprintf("fk_%s_%s", Sanitize(table.Name), colName)
		if len(constraint) > MaxIdentifierLen {
			constraint = constraint[:MaxIdentifierLen]
		}

		// Cross-tenant references are not supported: the referenced table
		// is namespaced with the same tenant prefix as the referencing one.
		alter := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			QuoteIdent(phys),
			QuoteIdent(constraint),
			QuoteIdent(colName),
			QuoteIdent(PhysicalTableName(tenantID, refTable)),
			QuoteIdent(Sanitize(refColumn)))

		stmts = append(stmts, wrapDuplicateSuppress(alter))
	}
	return stmts
}

// wrapDuplicateSuppress wraps a DDL statement in a block that swallows
// the duplicate-constraint condition.
func wrapDuplicateSuppress(stmt string) string {
	return fmt.Sprintf("DO $$ BEGIN %s; EXCEPTION WHEN duplicate_object THEN NULL; END $$", stmt)
}
