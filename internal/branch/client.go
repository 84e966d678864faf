// Package branch allocates an isolated branch of the backing database
// per tenant through a managed branching API (Neon-style). Every failure
// here is soft: callers get nil/false/empty and fall back to
// shared-schema tenancy, never an error that aborts provisioning.
package branch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"launchdb/internal/ddl"
)

const (
	defaultBaseURL = "https://console.neon.tech/api/v2"
	requestTimeout = 15 * time.Second

	// branchNamePrefix tags every branch we own; maxBranchNameLen bounds
	// the derived name regardless of tenant id length.
	branchNamePrefix = "br-"
	maxBranchNameLen = 40
)

// Config carries the branching-API credentials and the connection
// defaults used to assemble per-branch connection strings. Isolation is
// all-or-nothing: without both APIKey and ProjectID every call reports
// "not configured".
type Config struct {
	APIKey    string
	ProjectID string
	Database  string
	Role      string
	Password  string
	BaseURL   string // override for tests; defaults to the hosted API
}

// TenantBranch is a dedicated, isolated database instance for one tenant.
type TenantBranch struct {
	BranchID         string    `json:"branchId"`
	BranchName       string    `json:"branchName"`
	EndpointHost     string    `json:"endpointHost,omitempty"`
	ConnectionString string    `json:"connectionString,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether branch isolation is configured at all.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != "" && c.cfg.ProjectID != ""
}

// BranchName derives the deterministic branch name for a tenant.
func BranchName(tenantID string) string {
	name := branchNamePrefix + ddl.Sanitize(tenantID)
	if len(name) > maxBranchNameLen {
		name = name[:maxBranchNameLen]
	}
	return name
}

type endpointPayload struct {
	Host string `json:"host"`
	Type string `json:"type"`
}

type branchPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBranch provisions an isolated branch for the tenant and returns
// it with a ready-to-use connection string, or nil when isolation is
// unconfigured or the provider misbehaves in any way.
func (c *Client) CreateBranch(ctx context.Context, tenantID, displayName string) *TenantBranch {
	if !c.Enabled() {
		return nil
	}

	reqBody := map[string]any{
		"branch": map[string]any{
			"name": BranchName(tenantID),
		},
		"endpoints": []map[string]any{
			{"type": "read_write"},
		},
	}
	if displayName != "" {
		reqBody["annotation_value"] = map[string]any{"display_name": displayName}
	}

	var resp struct {
		Branch    branchPayload     `json:"branch"`
		Endpoints []endpointPayload `json:"endpoints"`
	}
	url := fmt.Sprintf("%s/projects/%s/branches", c.cfg.BaseURL, c.cfg.ProjectID)
	if !c.do(ctx, http.MethodPost, url, reqBody, &resp) {
		return nil
	}

	// Select the first read-write endpoint; a branch without one is
	// unusable and treated as a failed creation.
	host := ""
	for _, ep := range resp.Endpoints {
		if ep.Type == "read_write" {
			host = ep.Host
			break
		}
	}
	if host == "" {
		log.Printf("Warning: branch %s returned no read-write endpoint", resp.Branch.ID)
		return nil
	}

	return &TenantBranch{
		BranchID:         resp.Branch.ID,
		BranchName:       resp.Branch.Name,
		EndpointHost:     host,
		ConnectionString: c.ConnString(host),
		CreatedAt:        resp.Branch.CreatedAt,
	}
}

// DeleteBranch destroys a branch. Returns false when unconfigured or on
// any provider error.
func (c *Client) DeleteBranch(ctx context.Context, branchID string) bool {
	if !c.Enabled() || branchID == "" {
		return false
	}
	url := fmt.Sprintf("%s/projects/%s/branches/%s", c.cfg.BaseURL, c.cfg.ProjectID, branchID)
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

// ListBranches returns the project's branches, or nil on any error.
func (c *Client) ListBranches(ctx context.Context) []TenantBranch {
	if !c.Enabled() {
		return nil
	}
	var resp struct {
		Branches []branchPayload `json:"branches"`
	}
	url := fmt.Sprintf("%s/projects/%s/branches", c.cfg.BaseURL, c.cfg.ProjectID)
	if !c.do(ctx, http.MethodGet, url, nil, &resp) {
		return nil
	}
	out := make([]TenantBranch, 0, len(resp.Branches))
	for _, b := range resp.Branches {
		out = append(out, TenantBranch{
			BranchID:   b.ID,
			BranchName: b.Name,
			CreatedAt:  b.CreatedAt,
		})
	}
	return out
}

// EndpointHost resolves the read-write endpoint host of an existing
// branch, or "" when it cannot be determined.
func (c *Client) EndpointHost(ctx context.Context, branchID string) string {
	if !c.Enabled() || branchID == "" {
		return ""
	}
	var resp struct {
		Endpoints []endpointPayload `json:"endpoints"`
	}
	url := fmt.Sprintf("%s/projects/%s/branches/%s/endpoints", c.cfg.BaseURL, c.cfg.ProjectID, branchID)
	if !c.do(ctx, http.MethodGet, url, nil, &resp) {
		return ""
	}
	for _, ep := range resp.Endpoints {
		if ep.Type == "read_write" {
			return ep.Host
		}
	}
	return ""
}

// ConnString assembles a TLS-required connection string for a branch host
// from the configured role, password and database.
func (c *Client) ConnString(host string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=require",
		c.cfg.Role, c.cfg.Password, host, c.cfg.Database)
}

// do performs one API round trip with a single retry on transient
// failures. Every failure path logs and reports false.
func (c *Client) do(ctx context.Context, method, url string, body any, out any) bool {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Printf("Warning: failed to encode branch API request: %v", err)
			return false
		}
	}
	idempotencyKey := uuid.NewString()

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				log.Printf("Warning: branch API call cancelled: %v", ctx.Err())
				return false
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			log.Printf("Warning: failed to build branch API request: %v", err)
			return false
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", idempotencyKey)

		resp, err := c.http.Do(req)
		if err != nil {
			log.Printf("Warning: branch API request failed (attempt %d): %v", attempt+1, err)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			log.Printf("Warning: failed to read branch API response: %v", readErr)
			continue
		}

		if resp.StatusCode >= 500 {
			log.Printf("Warning: branch API returned status %d (attempt %d)", resp.StatusCode, attempt+1)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("Warning: branch API returned status %d: %s", resp.StatusCode, truncateBody(respBody))
			return false
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				log.Printf("Warning: failed to decode branch API response: %v", err)
				return false
			}
		}
		return true
	}
	return false
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
