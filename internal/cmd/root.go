package cmd

import (
	"github.com/nonightshift/scosim/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the scosim CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scosim",
		Short: "scosim - a dial-in SCO UNIX terminal simulator",
		Long: `scosim recreates a December 1995 SCO UNIX System V/386 machine: an
in-memory filesystem, a frozen system clock, a fake process table, and a
14.4k modem dial-in, reachable from a terminal, a browser, or a FUSE mount.

Use subcommands to perform different operations:
  - run: Start an interactive terminal session
  - serve: Serve the web terminal API
  - mount: Mount the simulated tree as a FUSE filesystem
  - snapshot: Write or validate filesystem snapshot documents`,
		Version: version.GetFullVersion(),
	}

	groupSession := "session"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupSession,
		Title: "Session Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	runCmd := NewRunCmd()
	serveCmd := NewServeCmd()
	mountCmd := NewMountCmd()
	snapshotCmd := NewSnapshotCmd()

	runCmd.GroupID = groupSession
	serveCmd.GroupID = groupSession
	mountCmd.GroupID = groupSession
	snapshotCmd.GroupID = groupUtilities

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(snapshotCmd)

	return rootCmd
}
