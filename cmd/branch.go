package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage isolated tenant branches",
}

var branchCreateCmd = &cobra.Command{
	Use:   "create <tenant-id> [display-name]",
	Short: "Create an isolated branch for a tenant",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID := args[0]
		displayName := tenantID
		if len(args) == 2 {
			displayName = args[1]
		}

		tb := Svc.CreateProjectBranch(cmd.Context(), tenantID, displayName)
		if tb == nil {
			log.Println("Branch isolation unavailable; tenant stays on the shared schema.")
			return nil
		}

		fmt.Printf("🌱 Branch created for tenant %q:\n", tenantID)
		fmt.Printf("  ID:       %s\n", tb.BranchID)
		fmt.Printf("  Name:     %s\n", tb.BranchName)
		fmt.Printf("  Endpoint: %s\n", tb.EndpointHost)
		fmt.Printf("  DSN:      %s\n", tb.ConnectionString)
		return nil
	},
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List branches of the configured project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		branches := Svc.ListProjectBranches(cmd.Context())
		if len(branches) == 0 {
			fmt.Println("No branches found (or branch isolation is not configured).")
			return nil
		}
		fmt.Printf("🌳 Branches (%d):\n", len(branches))
		for i, b := range branches {
			fmt.Printf("[%02d] %-24s %s (created %s)\n", i+1, b.BranchName, b.BranchID, b.CreatedAt)
		}
		return nil
	},
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete <branch-id>",
	Short: "Delete a branch and evict its cached connection pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !Svc.DeleteProjectBranch(cmd.Context(), args[0]) {
			log.Printf("Warning: Failed to delete branch %s (continuing...)", args[0])
			return nil
		}
		log.Printf("Branch %s deleted.", args[0])
		return nil
	},
}

var branchExecCmd = &cobra.Command{
	Use:   "exec <connection-string> <query>",
	Short: "Run a single SQL statement against a branch",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := Svc.ExecuteOnProjectBranch(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to execute on branch: %w", err)
		}
		for i, row := range result.Rows {
			fmt.Printf("[%02d] %v\n", i+1, row)
		}
		fmt.Printf("Rows: %d\n", result.RowCount)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchCreateCmd)
	branchCmd.AddCommand(branchListCmd)
	branchCmd.AddCommand(branchDeleteCmd)
	branchCmd.AddCommand(branchExecCmd)
}
