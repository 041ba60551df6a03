package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nonightshift/scosim/internal/clock"
	"github.com/nonightshift/scosim/internal/config"
	"github.com/nonightshift/scosim/internal/snapshot"
)

// NewSnapshotCmd creates and returns the snapshot subcommand. It writes
// the default tree (or an existing snapshot, normalized) back out as a
// snapshot document, and can validate documents in place.
func NewSnapshotCmd() *cobra.Command {
	var (
		outputPath string
		validate   bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [FILE]",
		Short: "Write or validate filesystem snapshot documents",
		Long: `Write a filesystem snapshot document, or validate an existing one.

Without arguments, the built-in December 1995 tree is written to the
configured snapshot path. With FILE, that document is loaded first so the
output is a normalized copy. --validate checks a document and reports
every problem found without writing anything.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			if validate {
				runSnapshotValidate(input)
				return
			}
			runSnapshotWrite(input, outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (defaults to the configured snapshot path)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the document instead of writing")

	return cmd
}

func runSnapshotValidate(input string) {
	cfg := config.Load()
	if input == "" {
		input = cfg.SnapshotPath
	}

	data, err := os.ReadFile(input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", input, err)
	}
	var doc snapshot.NodeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Fatalf("Failed to parse %s: %v", input, err)
	}
	if err := snapshot.Validate(doc); err != nil {
		fmt.Printf("%s is not a valid snapshot:\n%v\n", input, err)
		os.Exit(1)
	}
	fmt.Printf("%s is a valid snapshot\n", input)
}

func runSnapshotWrite(input, output string) {
	cfg := config.Load()
	clk := clock.New()
	if output == "" {
		output = cfg.SnapshotPath
	}
	if input == "" {
		input = cfg.SnapshotPath
	}

	// Load falls back to the default tree when the input does not exist
	root, err := snapshot.Load(input, clk.Now)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	if err := snapshot.Save(output, snapshot.Dump(root)); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}
	fmt.Printf("Wrote snapshot to %s\n", output)
}
