// Package main provides the scosim command-line interface.
//
// scosim recreates a December 1995 SCO UNIX System V/386 machine: an
// in-memory filesystem seeded from a snapshot document, a frozen system
// clock, a fake process table, and the 14.4k modem dial-in ritual in
// front of it all.
//
// The main binary supports multiple subcommands:
//   - run: Start an interactive terminal session
//   - serve: Serve the browser-facing web terminal API
//   - mount: Mount the simulated tree as a FUSE filesystem
//   - snapshot: Write or validate filesystem snapshot documents
package main
