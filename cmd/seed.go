package cmd

import (
	"fmt"
	"log"
	"time"

	"launchdb/internal/engine"
	"launchdb/internal/spec"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed <spec-file> <tenant-id>",
	Short: "Fill tenant tables with generated sample data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		specFile, tenantID := args[0], args[1]

		app, err := spec.LoadFile(specFile)
		if err != nil {
			return err
		}

		// Fetch count from Viper (Flag > Config > Default)
		targetCount := viper.GetInt("settings.seed_count")
		if seedCount > 0 { // Flag override
			targetCount = seedCount
		}

		totalTables := 0
		for _, m := range app.Modules {
			totalTables += len(m.Tables)
		}

		log.Printf("Starting seed with count=%d per table...", targetCount)
		start := time.Now()

		uiprogress.Start()
		bar := uiprogress.AddBar(totalTables).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Seeding: "
		})

		type seedResult struct {
			table string
			res   spec.InsertResult
		}
		var results []seedResult

		for _, mod := range app.Modules {
			for _, table := range mod.Tables {
				rows := engine.GenerateRows(table, targetCount)
				res := Svc.InsertSampleData(cmd.Context(), tenantID, table.Name, rows)
				results = append(results, seedResult{table: table.Name, res: res})
				bar.Incr()
			}
		}

		uiprogress.Stop()
		elapsed := time.Since(start)

		// Final Report
		fmt.Println("\n📊 Seed Report:")
		total := 0
		for i, r := range results {
			icon := "✓"
			if !r.res.Success {
				icon = "!"
			}
			fmt.Printf("[%s] [%02d/%02d] %-24s : %d rows (Target: %d)\n",
				icon, i+1, len(results), r.table, r.res.Inserted, r.res.Requested)
			total += r.res.Inserted
		}
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Total Rows Inserted: %d\n", total)
		log.Printf("Seed Done! Time Elapsed: %s", elapsed)

		return nil
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedCount, "count", 0, "Number of records to generate per table (overrides config)")

	viper.BindPFlag("settings.seed_count", seedCmd.Flags().Lookup("count"))
	viper.SetDefault("settings.seed_count", 25)
}
