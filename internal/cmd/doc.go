// Package cmd provides the command-line interface implementation for scosim.
//
// This package contains all the subcommand implementations for the scosim CLI.
// It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - run: Interactive terminal session with the modem dial-in
//   - serve: Browser-facing web terminal API
//   - mount: FUSE mounting of the simulated tree
//   - snapshot: Snapshot document writing and validation
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command.
package cmd
