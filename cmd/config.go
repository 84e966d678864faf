package cmd

import (
	"launchdb/internal/branch"

	"github.com/spf13/viper"
)

// GetBranchConfig assembles the branching service credentials from
// Viper (Flag > Config > Env). An empty API key or project ID simply
// disables branch isolation; it is never an error.
func GetBranchConfig() branch.Config {
	return branch.Config{
		APIKey:    viper.GetString("branch.api_key"),
		ProjectID: viper.GetString("branch.project_id"),
		Database:  viper.GetString("branch.database"),
		Role:      viper.GetString("branch.role"),
		Password:  viper.GetString("branch.password"),
		BaseURL:   viper.GetString("branch.base_url"),
	}
}

func init() {
	viper.SetDefault("branch.database", "neondb")
	viper.SetDefault("branch.role", "neondb_owner")
}
