package cmd

import (
	"fmt"
	"log"
	"time"

	"launchdb/internal/engine"
	"launchdb/internal/spec"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

var (
	provisionDryRun bool
	branchDSN       string
)

var provisionCmd = &cobra.Command{
	Use:   "provision <spec-file> <tenant-id>",
	Short: "Provision tenant tables from an application spec file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		specFile, tenantID := args[0], args[1]

		app, err := spec.LoadFile(specFile)
		if err != nil {
			return err
		}

		totalTables := 0
		for _, m := range app.Modules {
			totalTables += len(m.Tables)
		}
		fmt.Printf("🚀 Project %s: %d modules, %d tables → tenant %q\n",
			app.Project, len(app.Modules), totalTables, tenantID)

		// Dry Run
		if provisionDryRun {
			log.Println("[SIMULATION] Dry-Run Mode Active: No DDL will be executed.")
			for i, stmt := range engine.Plan(tenantID, app.Modules) {
				fmt.Printf("[%02d] %s\n", i+1, stmt)
			}
			return nil
		}

		start := time.Now()

		// Progress Bar
		uiprogress.Start()
		bar := uiprogress.AddBar(totalTables).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Provisioning: "
		})

		result := Svc.ProvisionProjectDatabase(cmd.Context(), tenantID, branchDSN, app.Modules, func() {
			bar.Incr()
		})

		uiprogress.Stop()
		elapsed := time.Since(start)

		// Final Report
		fmt.Println("\n📊 Provisioning Report:")
		for i, name := range result.Tables {
			fmt.Printf("[✓] [%02d/%02d] %s\n", i+1, totalTables, name)
		}
		for _, e := range result.Errors {
			fmt.Printf("[!] %s\n", e)
		}
		fmt.Println("--------------------------------------------------")
		if result.Success {
			log.Printf("Provision Done! %d tables created. Time Elapsed: %s", len(result.Tables), elapsed)
		} else {
			log.Printf("Provision finished with %d errors. Time Elapsed: %s", len(result.Errors), elapsed)
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "Print the DDL plan without executing it")
	provisionCmd.Flags().StringVar(&branchDSN, "branch-dsn", "", "Provision on this isolated branch instead of the shared database")
}
