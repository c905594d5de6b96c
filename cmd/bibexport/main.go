// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibexport CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the bibexport CLI.
var rootCmd = &cobra.Command{
	Use:   "bibexport",
	Short: "Export bibliographic items as BibTeX or BibLaTeX records",
	Long: `bibexport converts a library of normalized bibliographic items into
BibTeX or BibLaTeX records. Field values go through dialect-aware escaping,
capitalization protection, and name-particle handling; user override
directives carried on items can rename, retype, or delete fields per
reference type.

Use the export subcommand to produce a .bib stream and the cache subcommand
to inspect or clear the export cache.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibexport.yaml or ~/.config/bibexport/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibexport")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibexport"))
		}
	}

	viper.SetEnvPrefix("BIBEXPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
