// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2pptx CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2pptx/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds service credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if it is set, otherwise the secret value for
// key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the pdf2pptx CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf2pptx",
	Short: "Convert PDF slide decks into editable PPTX presentations",
	Long: `pdf2pptx reconstructs editable presentations from PDF slide decks. Each page
is rasterized, analyzed by a self-hosted layout/OCR extraction service, and
decomposed into positioned text, table, and image elements. Foreground
content is removed from the page background through an inpainting service,
and the result is assembled into a PPTX with template-derived styling.

The main workflow is the convert subcommand; extract exposes single
extraction calls and the extraction registry for debugging.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf2pptx.yaml or ~/.config/pdf2pptx/config.yaml)")
	rootCmd.PersistentFlags().String("work-dir", "work", "base directory for intermediate artifacts")
	rootCmd.PersistentFlags().String("extraction-endpoint", "", "base URL of the layout/OCR extraction service")
	rootCmd.PersistentFlags().String("extraction-token", "", "bearer token for the extraction service (default: mineru-token secret)")

	viper.BindPFlag("work_dir", rootCmd.PersistentFlags().Lookup("work-dir"))
	viper.BindPFlag("extraction.endpoint", rootCmd.PersistentFlags().Lookup("extraction-endpoint"))
	viper.BindPFlag("extraction.token", rootCmd.PersistentFlags().Lookup("extraction-token"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf2pptx")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf2pptx"))
		}
	}

	viper.SetEnvPrefix("PDF2PPTX")
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
