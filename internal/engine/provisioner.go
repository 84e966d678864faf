package engine

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"launchdb/internal/ddl"
	"launchdb/internal/spec"
)

// Execer is the statement-execution surface the provisioner needs.
// *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Tenant ids must already be their own sanitized form. Distinct ids then
// map to distinct namespace prefixes, so two tenants can never silently
// share tables in the shared schema.
var tenantIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)

func ValidTenantID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// Provisioner turns module definitions into physical tables, one tenant
// at a time. Concurrent calls for the same tenant serialize on a keyed
// mutex; different tenants proceed independently.
type Provisioner struct {
	db Execer

	mu      sync.Mutex
	tenants map[string]*sync.Mutex
}

func NewProvisioner(db Execer) *Provisioner {
	return &Provisioner{db: db, tenants: make(map[string]*sync.Mutex)}
}

func (p *Provisioner) tenantLock(tenantID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.tenants[tenantID]
	if !ok {
		m = &sync.Mutex{}
		p.tenants[tenantID] = m
	}
	return m
}

// Provision creates every table of every module, then applies foreign
// keys in a second pass. A single bad table never blocks its siblings:
// per-object failures are collected and the batch continues. The second
// pass runs after all creates regardless of how many succeeded, so a
// column may reference a table defined later in the batch.
//
// onProgress, when non-nil, is invoked once per attempted table create.
func (p *Provisioner) Provision(ctx context.Context, tenantID string, modules []spec.ModuleDefinition, onProgress func()) spec.ProvisioningResult {
	return p.ProvisionOn(ctx, p.db, tenantID, modules, onProgress)
}

// ProvisionOn runs the same two-pass flow against an explicit execution
// target, so a tenant's DDL can land on its isolated branch instead of
// the shared database. The per-tenant serialization is shared with
// Provision regardless of target.
func (p *Provisioner) ProvisionOn(ctx context.Context, db Execer, tenantID string, modules []spec.ModuleDefinition, onProgress func()) spec.ProvisioningResult {
	result := spec.ProvisioningResult{Tables: []string{}, Errors: []string{}}

	if !ValidTenantID(tenantID) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("invalid tenant id %q: must match %s", tenantID, tenantIDPattern.String()))
		return result
	}

	lock := p.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	// Pass 1: creates, strictly in input order.
	var fkStmts []fkStmt
	for _, mod := range modules {
		for _, table := range mod.Tables {
			stmt := ddl.BuildCreateTable(tenantID, table)
			if _, err := db.Exec(ctx, stmt); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to create table %s: %v", table.Name, err))
			} else {
				result.Tables = append(result.Tables, table.Name)
			}
			for _, s := range ddl.BuildForeignKeys(tenantID, table) {
				fkStmts = append(fkStmts, fkStmt{table: table.Name, sql: s})
			}
			if onProgress != nil {
				onProgress()
			}
		}
	}

	// Pass 2: foreign keys, same table order. Already-existing constraints
	// are swallowed inside the statement itself, so re-provisioning stays
	// clean; real failures are reported alongside create failures.
	for _, fk := range fkStmts {
		if _, err := db.Exec(ctx, fk.sql); err != nil {
			log.Printf("Warning: foreign key on table %s failed: %v", fk.table, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to add foreign key on table %s: %v", fk.table, err))
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}

type fkStmt struct {
	table string
	sql   string
}

// Plan returns every statement Provision would execute, in order,
// without touching the database.
func Plan(tenantID string, modules []spec.ModuleDefinition) []string {
	var stmts []string
	var fks []string
	for _, mod := range modules {
		for _, table := range mod.Tables {
			stmts = append(stmts, ddl.BuildCreateTable(tenantID, table))
			fks = append(fks, ddl.BuildForeignKeys(tenantID, table)...)
		}
	}
	return append(stmts, fks...)
}
