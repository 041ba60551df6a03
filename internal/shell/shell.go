// Package shell implements the simulated command interpreter: a registry of
// command handlers over the virtual filesystem, the process table, and the
// simulated clock. Handlers are registered by direct function reference at
// construction time; there is no string-driven dispatch beyond the registry
// map itself.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nonightshift/scosim/internal/clock"
	"github.com/nonightshift/scosim/internal/proc"
	"github.com/nonightshift/scosim/internal/vfs"
)

// Handler executes one command. Handlers parse their own arguments and
// write user-facing text through the shell.
type Handler func(s *Shell, args []string)

// Options configure a shell session.
type Options struct {
	User  string
	FS    *vfs.FileSystem
	Procs *proc.Table
	Clock *clock.Clock
	Out   io.Writer

	HistoryFile string // empty disables persistence
	HistoryMax  int
	TarDelay    time.Duration // per-entry theatre delay for tar
	RmDelay     time.Duration // per-file theatre delay for rm
}

// Shell is one interactive session. It owns its filesystem view and is not
// safe for concurrent use; networked deployments run one goroutine per
// session.
type Shell struct {
	user  string
	fs    *vfs.FileSystem
	procs *proc.Table
	clock *clock.Clock
	out   io.Writer

	aliases  map[string]string
	history  []string
	registry map[string]Handler

	historyFile string
	historyMax  int
	tarDelay    time.Duration
	rmDelay     time.Duration
}

// New creates a session and registers the built-in commands.
func New(opts Options) *Shell {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.HistoryMax <= 0 {
		opts.HistoryMax = 1000
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Procs == nil {
		opts.Procs = proc.NewTable(opts.Clock.Now)
	}
	if opts.FS == nil {
		opts.FS = vfs.NewEmpty(opts.Clock.Now)
	}
	s := &Shell{
		user:        opts.User,
		fs:          opts.FS,
		procs:       opts.Procs,
		clock:       opts.Clock,
		out:         opts.Out,
		aliases:     make(map[string]string),
		historyFile: opts.HistoryFile,
		historyMax:  opts.HistoryMax,
		tarDelay:    opts.TarDelay,
		rmDelay:     opts.RmDelay,
	}
	s.registry = map[string]Handler{
		"cd":     cmdCd,
		"pwd":    cmdPwd,
		"mkdir":  cmdMkdir,
		"ls":     cmdLs,
		"rm":     cmdRm,
		"cat":    cmdCat,
		"echo":   cmdEcho,
		"tar":    cmdTar,
		"date":   cmdDate,
		"who":    cmdWho,
		"w":      cmdW,
		"whoami": cmdWhoami,
		"uptime": cmdUptime,
		"df":     cmdDf,
		"ps":     cmdPs,
		"uname":  cmdUname,
		"kill":   cmdKill,
		"clear":  cmdClear,
		"help":   cmdHelp,
		"alias":  cmdAlias,
	}
	s.loadHistory()
	return s
}

// User returns the logged-in user name.
func (s *Shell) User() string { return s.user }

// FS exposes the session's filesystem, mainly for the FUSE adapter and
// tests.
func (s *Shell) FS() *vfs.FileSystem { return s.fs }

// Prompt returns the classic prompt for the session's user.
func (s *Shell) Prompt() string {
	if s.user == "root" {
		return "# "
	}
	return "$ "
}

// Println writes one output line.
func (s *Shell) Println(line string) {
	fmt.Fprintln(s.out, line)
}

// Printf writes formatted output.
func (s *Shell) Printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Execute runs a single command line. It returns false when the session
// should end (logout and friends).
func (s *Shell) Execute(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	s.appendHistory(trimmed)

	parts := strings.Fields(trimmed)
	name := strings.ToLower(parts[0])

	// single-level alias expansion, arguments appended
	if expansion, ok := s.aliases[name]; ok {
		expanded := expansion
		if len(parts) > 1 {
			expanded += " " + strings.Join(parts[1:], " ")
		}
		parts = strings.Fields(expanded)
		if len(parts) == 0 {
			return true
		}
		name = strings.ToLower(parts[0])
	}
	args := parts[1:]

	switch name {
	case "logout", "exit", "quit":
		return false
	case "history":
		s.showHistory(args)
		return true
	}

	handler, ok := s.registry[name]
	if !ok {
		s.Println(name + ": not found")
		return true
	}
	handler(s, args)
	return true
}

// Run drives the session from a line-oriented reader until logout or EOF,
// then persists history.
func (s *Shell) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		s.Printf("%s", s.Prompt())
		if !scanner.Scan() {
			break
		}
		if !s.Execute(scanner.Text()) {
			break
		}
	}
	s.SaveHistory()
}

func (s *Shell) appendHistory(line string) {
	s.history = append(s.history, line)
	if len(s.history) > s.historyMax {
		s.history = s.history[len(s.history)-s.historyMax:]
	}
}

func (s *Shell) showHistory(args []string) {
	start := 0
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n < len(s.history) {
			start = len(s.history) - n
		}
	}
	for i := start; i < len(s.history); i++ {
		s.Printf(" %4d  %s\n", i+1, s.history[i])
	}
}

func (s *Shell) loadHistory() {
	if s.historyFile == "" {
		return
	}
	data, err := os.ReadFile(s.historyFile)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			s.history = append(s.history, line)
		}
	}
	if len(s.history) > s.historyMax {
		s.history = s.history[len(s.history)-s.historyMax:]
	}
}

// SaveHistory writes the session history back to the history file.
func (s *Shell) SaveHistory() {
	if s.historyFile == "" {
		return
	}
	content := strings.Join(s.history, "\n")
	if content != "" {
		content += "\n"
	}
	_ = os.WriteFile(s.historyFile, []byte(content), 0o600)
}
