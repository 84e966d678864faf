package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	peekTable string
	peekLimit int
)

var tablesCmd = &cobra.Command{
	Use:   "tables <tenant-id>",
	Short: "List a tenant's provisioned tables (or peek at one)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID := args[0]

		if peekTable != "" {
			data := Svc.GetTableData(cmd.Context(), tenantID, peekTable, peekLimit)
			fmt.Printf("🔍 %s (%d columns, %d rows):\n", peekTable, len(data.Columns), len(data.Rows))
			fmt.Printf("Columns: %v\n", data.Columns)
			for i, row := range data.Rows {
				fmt.Printf("[%02d] %v\n", i+1, row)
			}
			return nil
		}

		names := Svc.GetProjectTables(cmd.Context(), tenantID)
		if len(names) == 0 {
			fmt.Printf("No tables provisioned for tenant %q.\n", tenantID)
			return nil
		}
		fmt.Printf("📋 Tables for tenant %q:\n", tenantID)
		for i, name := range names {
			fmt.Printf("[%02d] %s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)

	tablesCmd.Flags().StringVar(&peekTable, "peek", "", "Show rows from this table instead of listing")
	tablesCmd.Flags().IntVar(&peekLimit, "limit", 0, "Max rows to fetch when peeking (default 100)")
}
