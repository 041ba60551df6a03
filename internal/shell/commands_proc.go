package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nonightshift/scosim/internal/proc"
)

func cmdPs(s *Shell, args []string) {
	parsed := ParseArgs(args)
	fullListing := (parsed.HasFlag('e') && parsed.HasFlag('f')) ||
		(parsed.HasFlag('a') && parsed.HasFlag('u') && parsed.HasFlag('x'))

	// the session's own shell and this ps invocation show up too
	shellProc := s.procs.Spawn(s.user, "-sh", 1, "tty1a")
	psCommand := "ps"
	if len(args) > 0 {
		psCommand += " " + strings.Join(args, " ")
	}
	psProc := s.procs.Spawn(s.user, psCommand, shellProc.PID, "tty1a")

	filterUser := s.user
	if fullListing {
		filterUser = ""
	}
	for _, line := range s.procs.FormatPS(fullListing, filterUser) {
		s.Println(line)
	}

	s.procs.Remove(psProc.PID)
	s.procs.Remove(shellProc.PID)
}

func cmdKill(s *Shell, args []string) {
	if len(args) == 0 {
		s.Println("usage: kill [ -sig ] pid ...")
		s.Println("       kill -l")
		return
	}

	signal := 15
	var pids []int
	for _, arg := range args {
		switch {
		case arg == "-l":
			s.Println("HUP INT QUIT ILL TRAP ABRT EMT FPE KILL BUS SEGV SYS")
			s.Println("PIPE ALRM TERM USR1 USR2 CHLD PWR WINCH URG POLL STOP")
			s.Println("TSTP CONT TTIN TTOU VTALRM PROF XCPU XFSZ WAITING LWP")
			return
		case strings.HasPrefix(arg, "-"):
			if n, err := strconv.Atoi(arg[1:]); err == nil {
				signal = n
			}
		default:
			if pid, err := strconv.Atoi(arg); err == nil {
				pids = append(pids, pid)
			}
		}
	}
	if len(pids) == 0 {
		s.Println("kill: no process ID specified")
		return
	}

	for _, pid := range pids {
		target := s.procs.Get(pid)
		if target == nil {
			s.Println(fmt.Sprintf("kill: %d: No such process", pid))
			continue
		}
		if s.user != "root" && target.UID != s.user {
			s.Println(fmt.Sprintf("kill: %d: Operation not permitted", pid))
			continue
		}
		// silent on success, like the real thing
		if err := s.procs.Kill(pid, signal); err != nil {
			switch {
			case errors.Is(err, proc.ErrNotPermitted):
				s.Println(fmt.Sprintf("kill: %d: Operation not permitted", pid))
			case errors.Is(err, proc.ErrNoSuchProcess):
				s.Println(fmt.Sprintf("kill: %d: No such process", pid))
			default:
				s.Println("kill: " + err.Error())
			}
		}
	}
}
