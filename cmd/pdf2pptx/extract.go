package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2pptx/internal/extract"
	"github.com/pdiddy/pdf2pptx/internal/registry"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Run a single extraction call or list recorded extractions",
	Long: `Extract submits one PDF or page image to the extraction service and prints
the normalized result directory. Useful for inspecting what the service
returns before running a full conversion.

With --list, the extraction registry of the work directory is printed
instead and no service call is made.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	list, _ := cmd.Flags().GetBool("list")
	if list {
		store, err := registry.Open(filepath.Join(cfg.WorkDir, "index"))
		if err != nil {
			return err
		}
		defer store.Close()
		return store.WriteTable(context.Background(), os.Stdout)
	}

	if len(args) != 1 {
		return fmt.Errorf("exactly one input file required (or --list)")
	}

	client, err := extract.NewClient(cfg.Extraction)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var id, dir string
	if strings.EqualFold(filepath.Ext(args[0]), ".pdf") {
		id, dir, err = client.ParsePDF(ctx, args[0], nil)
	} else {
		id, dir, err = client.ParseImage(ctx, args[0], nil)
	}
	if err != nil {
		return err
	}

	store, err := registry.Open(filepath.Join(cfg.WorkDir, "index"))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Record(ctx, registry.Extraction{
		ID:     id,
		Dir:    dir,
		Status: registry.StatusComplete,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: registry: %v\n", err)
	}

	fmt.Printf("extracted: %s (%s)\n", id, dir)
	return nil
}

func init() {
	extractCmd.Flags().Bool("list", false, "list recorded extractions instead of calling the service")

	rootCmd.AddCommand(extractCmd)
}
