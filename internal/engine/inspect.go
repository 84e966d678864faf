package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"launchdb/internal/ddl"
	"launchdb/internal/spec"
)

// Querier is the read+write surface introspection needs. *pgxpool.Pool
// satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Inspector lists, samples, fills and drops a tenant's physical tables.
// The read paths are best-effort: any failure resolves to an empty
// result rather than an error.
type Inspector struct {
	db Querier
}

func NewInspector(db Querier) *Inspector {
	return &Inspector{db: db}
}

// tenantLikePattern builds the LIKE pattern matching every physical
// table of the tenant, with literal underscores escaped.
func tenantLikePattern(tenantID string) string {
	prefix := ddl.TenantPrefix(tenantID) + "_"
	return strings.ReplaceAll(prefix, "_", `\_`) + "%"
}

// ListTables returns the tenant's physical table names, ordered by name.
// The inventory is derived from the catalog; nothing is stored.
func (i *Inspector) ListTables(ctx context.Context, tenantID string) []string {
	if !ValidTenantID(tenantID) {
		log.Printf("Warning: rejecting invalid tenant id %q", tenantID)
		return []string{}
	}
	query := `SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public' AND tablename LIKE $1 ORDER BY tablename`
	rows, err := i.db.Query(ctx, query, tenantLikePattern(tenantID))
	if err != nil {
		log.Printf("Warning: failed to list tables for tenant %s: %v", tenantID, err)
		return []string{}
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Printf("Warning: failed to scan table name: %v", err)
			return []string{}
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Warning: error iterating tables: %v", err)
		return []string{}
	}
	return tables
}

// TableData fetches up to limit rows from one tenant table. Columns are
// resolved through the catalog first so the result names them even when
// the table is empty.
func (i *Inspector) TableData(ctx context.Context, tenantID, table string, limit int) *spec.TableData {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	out := &spec.TableData{Columns: []string{}, Rows: []map[string]any{}}
	if !ValidTenantID(tenantID) {
		log.Printf("Warning: rejecting invalid tenant id %q", tenantID)
		return out
	}
	phys := ddl.PhysicalTableName(tenantID, table)

	colQuery := `SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position`
	rows, err := i.db.Query(ctx, colQuery, phys)
	if err != nil {
		log.Printf("Warning: failed to resolve columns for %s: %v", phys, err)
		return out
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			log.Printf("Warning: failed to scan column name: %v", err)
			return out
		}
		out.Columns = append(out.Columns, name)
	}
	rErr := rows.Err()
	rows.Close()
	if rErr != nil || len(out.Columns) == 0 {
		return out
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM %s LIMIT %d",
		quoteJoin(out.Columns), ddl.QuoteIdent(phys), limit)
	dataRows, err := i.db.Query(ctx, dataQuery)
	if err != nil {
		log.Printf("Warning: failed to fetch rows from %s: %v", phys, err)
		return out
	}
	defer dataRows.Close()

	for dataRows.Next() {
		vals, err := dataRows.Values()
		if err != nil {
			log.Printf("Warning: failed to read row from %s: %v", phys, err)
			return out
		}
		row := make(map[string]any, len(out.Columns))
		for idx, c := range out.Columns {
			row[c] = vals[idx]
		}
		out.Rows = append(out.Rows, row)
	}
	if err := dataRows.Err(); err != nil {
		log.Printf("Warning: error iterating rows from %s: %v", phys, err)
	}
	return out
}

// InsertRows inserts each row independently. Failed rows are logged and
// skipped; the result counts what actually landed versus what was asked.
func (i *Inspector) InsertRows(ctx context.Context, tenantID, table string, rowData []map[string]any) spec.InsertResult {
	result := spec.InsertResult{Requested: len(rowData)}
	// An id the sanitizer would rewrite could land on another tenant's
	// namespace, so it is rejected outright rather than corrected.
	if !ValidTenantID(tenantID) {
		log.Printf("Warning: rejecting invalid tenant id %q", tenantID)
		return result
	}
	phys := ddl.PhysicalTableName(tenantID, table)

	for idx, row := range rowData {
		stmt, args, ok := buildInsert(phys, row)
		if !ok {
			log.Printf("Warning: skipping empty row %d for %s", idx+1, phys)
			continue
		}
		if _, err := i.db.Exec(ctx, stmt, args...); err != nil {
			log.Printf("Warning: failed to insert row %d into %s: %v (continuing...)", idx+1, phys, err)
			continue
		}
		result.Inserted++
	}

	result.Success = result.Inserted == result.Requested
	return result
}

// buildInsert renders one parameterized INSERT from a generic row map.
// Keys are sanitized and ordered so the statement is deterministic.
func buildInsert(physTable string, row map[string]any) (string, []any, bool) {
	if len(row) == 0 {
		return "", nil, false
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for idx, k := range keys {
		cols[idx] = ddl.QuoteIdent(ddl.Sanitize(k))
		placeholders[idx] = fmt.Sprintf("$%d", idx+1)
		args[idx] = row[k]
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ddl.QuoteIdent(physTable), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return stmt, args, true
}

// DropAll tears a tenant down: every table matching the namespace is
// dropped with CASCADE. Not reversible. Returns the physical names that
// were actually dropped.
func (i *Inspector) DropAll(ctx context.Context, tenantID string) spec.DropResult {
	result := spec.DropResult{Dropped: []string{}}
	if !ValidTenantID(tenantID) {
		log.Printf("Warning: rejecting invalid tenant id %q", tenantID)
		return result
	}
	tables := i.ListTables(ctx, tenantID)

	failures := 0
	for _, t := range tables {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", ddl.QuoteIdent(t))
		if _, err := i.db.Exec(ctx, stmt); err != nil {
			log.Printf("Warning: failed to drop %s: %v (continuing...)", t, err)
			failures++
			continue
		}
		result.Dropped = append(result.Dropped, t)
	}

	result.Success = failures == 0
	return result
}

func quoteJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ddl.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
