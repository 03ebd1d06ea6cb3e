/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cvault/cvault/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new cvault configuration",
	Long: `Create a configuration file with a freshly generated operator
identity. The operator identity gates the admin endpoints; keep it secret.

Examples:
  cvault init
  cvault init --config=./cvault.yaml --data-dir=/var/lib/cvault`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")

		if config.ConfigExists(path) {
			cmd.Printf("Config already exists at %s\n", path)
			return nil
		}

		cfg, err := config.BootstrapConfig(path, dataDir)
		if err != nil {
			return err
		}

		cmd.Printf("Config written to %s\n", path)
		cmd.Printf("Operator ID: %s\n", cfg.Security.OperatorID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("data-dir", "", "Data directory to record in the config")
}
