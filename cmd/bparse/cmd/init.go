/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/byteparser/pkg/config"
	"github.com/ssargent/byteparser/pkg/decl"
)

// sampleDeclarations is written by init when no declaration file exists
var sampleDeclarations = decl.File{
	Records: []decl.Record{
		{
			Name: "header",
			Fields: []decl.Field{
				{Name: "magic", Type: "uint32", Endian: "big"},
				{Name: "version", Type: "uint16", Endian: "little"},
				{Name: "name", Type: "cstring"},
			},
		},
		{
			Name: "entry",
			Fields: []decl.Field{
				{Name: "id", Type: "varint"},
				{Name: "offset", Type: "uint64", Endian: "little"},
				{Name: "tag", Type: "fixed_string", Size: 8, Padding: " "},
			},
		},
	},
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and a sample declaration file",
	Long: `Create a bparse configuration file and the data directory.

This command will:
- Write the config file (--config, default ~/.config/bparse/config.yaml)
- Create the data directory
- Write a sample declaration file if none exists

Examples:
	  bparse init --data-dir=./data
	  bparse init --config=./bparse.yaml --data-dir=./data --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		if config.ConfigExists(configPath) && !force {
			return fmt.Errorf("config file %s already exists, use --force to overwrite", configPath)
		}

		cfg := a.config
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		a.logger.Info("wrote config", "path", configPath, "data_dir", cfg.DataDir)

		if _, err := os.Stat(cfg.Schemas); err == nil && !force {
			a.logger.Info("keeping existing declarations", "path", cfg.Schemas)
		} else {
			if err := sampleDeclarations.Save(cfg.Schemas); err != nil {
				return err
			}
			a.logger.Info("wrote sample declarations", "path", cfg.Schemas)
		}

		cmd.Printf("Config: %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("Declarations: %s\n", cfg.Schemas)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config and declaration file")
}
