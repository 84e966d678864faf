package engine

import (
	"context"
	"fmt"

	"launchdb/internal/branch"
	"launchdb/internal/pool"
	"launchdb/internal/spec"
)

// Service is the provisioning engine's outer surface: everything the
// API layer (or the CLI) calls goes through here. It owns nothing
// itself; the shared database handle, the pool registry and the branch
// client are created at startup and passed in.
type Service struct {
	db       Querier
	pools    *pool.Registry
	branches *branch.Client
	prov     *Provisioner
	insp     *Inspector
}

func NewService(db Querier, pools *pool.Registry, branches *branch.Client) *Service {
	return &Service{
		db:       db,
		pools:    pools,
		branches: branches,
		prov:     NewProvisioner(db),
		insp:     NewInspector(db),
	}
}

// ProvisionProjectDatabase provisions every table of the project's
// modules under the tenant's namespace. With an empty connString the
// DDL lands on the shared database; otherwise it runs on the branch
// behind connString through the pool registry.
func (s *Service) ProvisionProjectDatabase(ctx context.Context, tenantID, connString string, modules []spec.ModuleDefinition, onProgress func()) spec.ProvisioningResult {
	if connString == "" {
		return s.prov.Provision(ctx, tenantID, modules, onProgress)
	}
	p, err := s.pools.Get(ctx, connString)
	if err != nil {
		return spec.ProvisioningResult{
			Tables: []string{},
			Errors: []string{fmt.Sprintf("failed to open branch pool: %v", err)},
		}
	}
	return s.prov.ProvisionOn(ctx, p, tenantID, modules, onProgress)
}

func (s *Service) GetProjectTables(ctx context.Context, tenantID string) []string {
	return s.insp.ListTables(ctx, tenantID)
}

func (s *Service) GetTableData(ctx context.Context, tenantID, table string, limit int) *spec.TableData {
	return s.insp.TableData(ctx, tenantID, table, limit)
}

func (s *Service) DropProjectTables(ctx context.Context, tenantID string) spec.DropResult {
	return s.insp.DropAll(ctx, tenantID)
}

func (s *Service) InsertSampleData(ctx context.Context, tenantID, table string, rows []map[string]any) spec.InsertResult {
	return s.insp.InsertRows(ctx, tenantID, table, rows)
}

// CreateProjectBranch allocates an isolated branch for the tenant.
// A nil return means isolation is unavailable and the caller should
// stay on shared-schema tenancy.
func (s *Service) CreateProjectBranch(ctx context.Context, tenantID, displayName string) *branch.TenantBranch {
	return s.branches.CreateBranch(ctx, tenantID, displayName)
}

// DeleteProjectBranch destroys a branch and evicts its cached pool so
// the registry does not keep connections to a dead instance.
func (s *Service) DeleteProjectBranch(ctx context.Context, branchID string) bool {
	host := s.branches.EndpointHost(ctx, branchID)
	if !s.branches.DeleteBranch(ctx, branchID) {
		return false
	}
	if host != "" {
		s.pools.Evict(s.branches.ConnString(host))
	}
	return true
}

func (s *Service) ListProjectBranches(ctx context.Context) []branch.TenantBranch {
	return s.branches.ListBranches(ctx)
}

// ExecuteOnProjectBranch runs one statement against a branch through the
// shared pool registry.
func (s *Service) ExecuteOnProjectBranch(ctx context.Context, connString, query string) (*pool.QueryResult, error) {
	return s.pools.Execute(ctx, connString, query)
}
