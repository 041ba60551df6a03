package cmd

import (
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nonightshift/scosim/internal/config"
	"github.com/nonightshift/scosim/internal/server"
	"github.com/nonightshift/scosim/version"
)

// NewServeCmd creates and returns the serve subcommand, the browser-facing
// web terminal API.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web terminal API",
		Long: `Serve the HTTP API that backs the browser terminal.

Each created session gets its own private filesystem, process table, and
clock. Authentication uses the configured API key or JWTs minted from it.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runServe(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides SCOSIM_HOST/SCOSIM_PORT)")

	return cmd
}

func runServe(addr string) {
	cfg := config.Load()
	if addr != "" {
		host, port, err := splitAddr(addr)
		if err != nil {
			log.Fatalf("invalid --addr %q: %v", addr, err)
		}
		cfg.Host = host
		cfg.Port = port
	}
	if cfg.APIKey == "" {
		log.Fatal("SCOSIM_API_KEY must be set to serve the web terminal")
	}

	fmt.Printf("scosim %s starting...\n", version.GetFullVersion())

	if err := server.New(cfg).Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
