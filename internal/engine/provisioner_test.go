package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"launchdb/internal/spec"
)

// fakeDB records executed statements and fails the ones failOn matches.
type fakeDB struct {
	mu     sync.Mutex
	stmts  []string
	failOn func(sql string) error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	f.stmts = append(f.stmts, sql)
	f.mu.Unlock()
	if f.failOn != nil {
		if err := f.failOn(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("OK"), nil
}

func demoModules() []spec.ModuleDefinition {
	return []spec.ModuleDefinition{
		{
			Name: "crm",
			Tables: []spec.TableDefinition{
				{
					Name: "orders",
					Columns: []spec.ColumnDefinition{
						{Name: "id", Type: "serial", PrimaryKey: true},
						// References a table that appears later in the batch.
						{Name: "customer_id", Type: "integer", References: "customers.id", NotNull: true},
					},
				},
				{
					Name: "customers",
					Columns: []spec.ColumnDefinition{
						{Name: "id", Type: "serial", PrimaryKey: true},
						{Name: "name", Type: "varchar(120)", NotNull: true},
					},
				},
			},
		},
		{
			Name: "billing",
			Tables: []spec.TableDefinition{
				{
					Name: "invoices",
					Columns: []spec.ColumnDefinition{
						{Name: "id", Type: "serial", PrimaryKey: true},
						{Name: "order_id", Type: "integer", References: "orders.id"},
					},
				},
			},
		},
	}
}

func TestProvisionSuccess(t *testing.T) {
	db := &fakeDB{}
	p := NewProvisioner(db)

	result := p.Provision(context.Background(), "crm_demo", demoModules(), nil)

	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	want := []string{"orders", "customers", "invoices"}
	if len(result.Tables) != len(want) {
		t.Fatalf("Expected %d tables, got %v", len(want), result.Tables)
	}
	for i, name := range want {
		if result.Tables[i] != name {
			t.Errorf("Expected table %d to be %s, got %s", i, name, result.Tables[i])
		}
	}
	// 3 creates then 2 foreign keys.
	if len(db.stmts) != 5 {
		t.Fatalf("Expected 5 statements, got %d: %v", len(db.stmts), db.stmts)
	}
}

func TestProvisionOnTargetsGivenExecer(t *testing.T) {
	shared := &fakeDB{}
	branchDB := &fakeDB{}
	p := NewProvisioner(shared)

	result := p.ProvisionOn(context.Background(), branchDB, "crm_demo", demoModules(), nil)

	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	// Every statement must land on the branch, none on the shared handle.
	if len(shared.stmts) != 0 {
		t.Errorf("Shared database received %d statements: %v", len(shared.stmts), shared.stmts)
	}
	if len(branchDB.stmts) != 5 {
		t.Errorf("Expected 5 statements on the branch, got %d", len(branchDB.stmts))
	}
}

func TestProvisionUnknownTypeFallsBack(t *testing.T) {
	modules := demoModules()
	modules[0].Tables[1].Columns = append(modules[0].Tables[1].Columns,
		spec.ColumnDefinition{Name: "mood", Type: "vibes(9000)"})

	db := &fakeDB{}
	p := NewProvisioner(db)
	result := p.Provision(context.Background(), "crm_demo", modules, nil)

	// An unmappable type degrades to TEXT; the batch still fully succeeds.
	if !result.Success || len(result.Tables) != 3 {
		t.Fatalf("Expected 3 tables and success, got %+v", result)
	}
	found := false
	for _, s := range db.stmts {
		if strings.Contains(s, `"mood" TEXT`) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected mood column to fall back to TEXT: %v", db.stmts)
	}
}

func TestProvisionDefersForeignKeys(t *testing.T) {
	db := &fakeDB{}
	p := NewProvisioner(db)
	p.Provision(context.Background(), "crm_demo", demoModules(), nil)

	// Every CREATE must come before every ALTER: a table may reference a
	// sibling defined later in the batch.
	lastCreate, firstAlter := -1, len(db.stmts)
	for i, s := range db.stmts {
		if strings.HasPrefix(s, "CREATE TABLE") && i > lastCreate {
			lastCreate = i
		}
		if strings.Contains(s, "ADD CONSTRAINT") && i < firstAlter {
			firstAlter = i
		}
	}
	if lastCreate >= firstAlter {
		t.Errorf("Foreign keys must run after all creates: %v", db.stmts)
	}
}

func TestProvisionPartialFailure(t *testing.T) {
	db := &fakeDB{failOn: func(sql string) error {
		if strings.Contains(sql, "app_crm_demo_customers") && strings.HasPrefix(sql, "CREATE") {
			return errors.New("duplicate column")
		}
		return nil
	}}
	p := NewProvisioner(db)

	result := p.Provision(context.Background(), "crm_demo", demoModules(), nil)

	if result.Success {
		t.Error("Expected success=false with a failing table")
	}
	if len(result.Tables) != 2 {
		t.Errorf("Expected the 2 healthy tables, got %v", result.Tables)
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "failed to create table customers") && strings.Contains(e, "duplicate column") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a formatted create error, got %v", result.Errors)
	}
	// The FK pass still runs even though a create failed.
	alters := 0
	for _, s := range db.stmts {
		if strings.Contains(s, "ADD CONSTRAINT") {
			alters++
		}
	}
	if alters != 2 {
		t.Errorf("Expected the FK pass to run after failures, got %d alters", alters)
	}
}

func TestProvisionForeignKeyFailureSurfaces(t *testing.T) {
	db := &fakeDB{failOn: func(sql string) error {
		if strings.Contains(sql, "ADD CONSTRAINT") && strings.Contains(sql, "fk_invoices_order_id") {
			return errors.New("referenced table missing")
		}
		return nil
	}}
	p := NewProvisioner(db)

	result := p.Provision(context.Background(), "crm_demo", demoModules(), nil)

	if result.Success {
		t.Error("Expected success=false when a foreign key fails")
	}
	if len(result.Tables) != 3 {
		t.Errorf("Create-phase results must be unaffected, got %v", result.Tables)
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "failed to add foreign key on table invoices") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected FK failure in errors, got %v", result.Errors)
	}
}

func TestProvisionRejectsBadTenantIDs(t *testing.T) {
	for _, id := range []string{"", "Tenant", "9abc", "crm demo", "crm-demo", strings.Repeat("a", 41)} {
		db := &fakeDB{}
		p := NewProvisioner(db)
		result := p.Provision(context.Background(), id, demoModules(), nil)
		if result.Success {
			t.Errorf("Expected rejection for tenant id %q", id)
		}
		if len(db.stmts) != 0 {
			t.Errorf("No statements may run for invalid tenant id %q, got %v", id, db.stmts)
		}
	}

	for _, id := range []string{"crm", "a", "crm_demo_2"} {
		if !ValidTenantID(id) {
			t.Errorf("Expected tenant id %q to be valid", id)
		}
	}
}

func TestProvisionIdempotentStatements(t *testing.T) {
	db1 := &fakeDB{}
	db2 := &fakeDB{}
	NewProvisioner(db1).Provision(context.Background(), "crm_demo", demoModules(), nil)
	NewProvisioner(db2).Provision(context.Background(), "crm_demo", demoModules(), nil)

	if len(db1.stmts) != len(db2.stmts) {
		t.Fatalf("Statement counts differ: %d vs %d", len(db1.stmts), len(db2.stmts))
	}
	for i := range db1.stmts {
		if db1.stmts[i] != db2.stmts[i] {
			t.Errorf("Statement %d differs between runs:\n%s\n%s", i, db1.stmts[i], db2.stmts[i])
		}
	}
	// Re-running must lean on IF NOT EXISTS plus duplicate suppression
	// rather than on luck.
	for _, s := range db1.stmts {
		if strings.HasPrefix(s, "CREATE TABLE") && !strings.Contains(s, "IF NOT EXISTS") {
			t.Errorf("CREATE without IF NOT EXISTS: %s", s)
		}
		if strings.Contains(s, "ADD CONSTRAINT") && !strings.Contains(s, "duplicate_object") {
			t.Errorf("FK without duplicate suppression: %s", s)
		}
	}
}

func TestProvisionProgressCallback(t *testing.T) {
	db := &fakeDB{}
	p := NewProvisioner(db)
	ticks := 0
	p.Provision(context.Background(), "crm_demo", demoModules(), func() { ticks++ })
	if ticks != 3 {
		t.Errorf("Expected 3 progress ticks, got %d", ticks)
	}
}

func TestPlan(t *testing.T) {
	stmts := Plan("crm_demo", demoModules())
	if len(stmts) != 5 {
		t.Fatalf("Expected 5 planned statements, got %d", len(stmts))
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS") {
		t.Errorf("Expected a CREATE first, got %s", stmts[0])
	}
	if !strings.Contains(stmts[4], "ADD CONSTRAINT") {
		t.Errorf("Expected FKs last, got %s", stmts[4])
	}
}
