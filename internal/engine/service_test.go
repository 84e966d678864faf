package engine

import (
	"context"
	"strings"
	"testing"

	"launchdb/internal/branch"
	"launchdb/internal/pool"
)

func TestProvisionProjectDatabaseSharedFallback(t *testing.T) {
	db := &fakeQuerier{}
	svc := NewService(db, pool.NewRegistry(), branch.NewClient(branch.Config{}))

	result := svc.ProvisionProjectDatabase(context.Background(), "crm_demo", "", demoModules(), nil)

	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	// 3 creates + 2 foreign keys, all on the shared handle.
	if db.execCalls != 5 {
		t.Errorf("Expected 5 statements on the shared database, got %d", db.execCalls)
	}
}

func TestProvisionProjectDatabaseBadBranchDSN(t *testing.T) {
	db := &fakeQuerier{}
	svc := NewService(db, pool.NewRegistry(), branch.NewClient(branch.Config{}))

	result := svc.ProvisionProjectDatabase(context.Background(), "crm_demo", "not a dsn at all ://", demoModules(), nil)

	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("Expected a single pool error, got %+v", result)
	}
	if !strings.Contains(result.Errors[0], "failed to open branch pool") {
		t.Errorf("Unexpected error text: %s", result.Errors[0])
	}
	// The bad DSN must never reach the shared handle either.
	if db.execCalls != 0 {
		t.Errorf("Expected no statements, got %d", db.execCalls)
	}
}
