package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nonightshift/scosim/internal/clock"
	"github.com/nonightshift/scosim/internal/config"
	"github.com/nonightshift/scosim/internal/modem"
	"github.com/nonightshift/scosim/internal/proc"
	"github.com/nonightshift/scosim/internal/shell"
	"github.com/nonightshift/scosim/internal/snapshot"
	"github.com/nonightshift/scosim/internal/vfs"
	"github.com/nonightshift/scosim/version"
)

// NewRunCmd creates and returns the run subcommand, the interactive
// terminal session.
func NewRunCmd() *cobra.Command {
	var (
		skipDialin bool
		user       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive terminal session",
		Long: `Start an interactive session on the simulated machine.

By default the full modem dial-in plays first and the login prompt checks
the configured users. --skip-dialin jumps straight to login; --user also
skips the login prompt and drops into a shell for that user.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runSession(skipDialin, user)
		},
	}

	cmd.Flags().BoolVar(&skipDialin, "skip-dialin", false, "Skip the modem dial-in sequence")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Log in as this user without a password prompt")

	return cmd
}

func runSession(skipDialin bool, user string) {
	cfg := config.Load()
	clk := clock.New()

	mdm := modem.New(os.Stdin, os.Stdout, cfg.Authenticate, clk.Now, cfg.CharDelay)
	if !skipDialin {
		mdm.Dial()
	}
	mdm.ShowLoginScreen()

	if user == "" {
		name, ok := mdm.Login()
		if !ok {
			os.Exit(1)
		}
		user = name
	} else if _, known := cfg.Users[user]; !known {
		log.Fatalf("unknown user %q", user)
	}
	mdm.ShowWelcome(user)

	root, err := snapshot.Load(cfg.SnapshotPath, clk.Now)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	procs, err := proc.LoadTable(cfg.ProcessesPath, clk.Now)
	if err != nil {
		log.Fatalf("failed to load process table: %v", err)
	}

	sh := shell.New(shell.Options{
		User:        user,
		FS:          vfs.New(root, clk.Now),
		Procs:       procs,
		Clock:       clk,
		Out:         os.Stdout,
		HistoryFile: cfg.HistoryFile,
		HistoryMax:  cfg.HistoryMax,
		TarDelay:    cfg.TarDelay,
		RmDelay:     cfg.RmDelay,
	})
	sh.Run(os.Stdin)

	mdm.Logout(user)
	fmt.Printf("scosim %s\n", version.GetVersion())
}
