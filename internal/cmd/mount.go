package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"bazil.org/fuse"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"

	"github.com/nonightshift/scosim/internal/clock"
	"github.com/nonightshift/scosim/internal/config"
	"github.com/nonightshift/scosim/internal/fusefs"
	"github.com/nonightshift/scosim/internal/snapshot"
	"github.com/nonightshift/scosim/internal/vfs"
	"github.com/nonightshift/scosim/version"
)

// NewMountCmd creates and returns the mount subcommand for the scosim CLI.
// It exposes the simulated tree as a FUSE filesystem.
func NewMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount MOUNTPOINT",
		Short: "Mount the simulated tree as a FUSE filesystem",
		Long: `Mount the simulated 1995 filesystem at the specified mountpoint.

The tree is loaded from the configured snapshot document, or from the
built-in default when no snapshot exists. Changes live in memory only and
are lost on unmount.`,
		Args: cobra.ExactArgs(1),
		Run:  runMount,
	}
}

func runMount(cmd *cobra.Command, args []string) {
	fmt.Printf("scosim %s starting...\n", version.GetFullVersion())

	cfg := config.Load()
	mountpoint := args[0]

	clk := clock.New()
	root, err := snapshot.Load(cfg.SnapshotPath, clk.Now)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	filesystem := fusefs.New(vfs.New(root, clk.Now))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")

		fuse.Unmount(mountpoint)

		log.Println("Shutdown complete")
		os.Exit(0)
	}()

	log.Printf("scosim %s mounted at %s", version.GetVersion(), mountpoint)
	if err := fusefs.Mount(mountpoint, "SCO_SV scohost", filesystem); err != nil {
		log.Fatal(err)
	}
}
