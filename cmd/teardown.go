package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var teardownCmd = &cobra.Command{
	Use:   "teardown <tenant-id>",
	Short: "Drop all of a tenant's tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID := args[0]

		log.Printf("Dropping all tables for tenant %q...", tenantID)
		result := Svc.DropProjectTables(cmd.Context(), tenantID)

		for i, name := range result.Dropped {
			fmt.Printf("[✓] [%02d/%02d] Dropped %s\n", i+1, len(result.Dropped), name)
		}
		if result.Success {
			log.Printf("Teardown Done! %d tables dropped.", len(result.Dropped))
		} else {
			log.Printf("Teardown finished with failures: %d tables dropped.", len(result.Dropped))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(teardownCmd)
}
