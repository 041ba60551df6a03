package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nonightshift/scosim/internal/vfs"
)

func cmdCd(s *Shell, args []string) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	if err := s.fs.Chdir(target); err != nil {
		s.Println("cd: " + errText(err))
	}
}

func cmdPwd(s *Shell, args []string) {
	s.Println(s.fs.Current.FullPath())
}

func cmdMkdir(s *Shell, args []string) {
	if len(args) == 0 {
		s.Println("Usage: mkdir directory")
		return
	}
	for _, dirname := range args {
		if err := s.fs.Mkdir(dirname); err != nil {
			s.Println(fmt.Sprintf("mkdir: %s: %s", dirname, errText(err)))
		}
	}
}

func cmdLs(s *Shell, args []string) {
	parsed := ParseArgs(args)
	opts := vfs.ListOptions{
		ShowHidden:  parsed.HasFlag('a'),
		SortByMtime: parsed.HasFlag('t'),
		Reverse:     parsed.HasFlag('r'),
	}
	longFormat := parsed.HasFlag('l')

	paths := parsed.Positionals()
	if len(paths) == 0 {
		paths = []string{""}
	}
	for _, p := range paths {
		entries, err := s.fs.List(p, opts)
		if err != nil {
			s.Println(fmt.Sprintf("ls: %s: %s", p, errText(err)))
			continue
		}
		if longFormat {
			s.Println(fmt.Sprintf("total %d", len(entries)*4))
			for _, entry := range entries {
				s.Println(vfs.FormatLong(entry))
			}
			continue
		}
		names := make([]string, len(entries))
		for i, entry := range entries {
			names[i] = entry.Name
		}
		s.Println(strings.Join(names, "\t"))
	}
}

func cmdRm(s *Shell, args []string) {
	if len(args) == 0 {
		s.Println("Usage: rm [-r] file ...")
		return
	}
	parsed := ParseArgs(args)
	recursive := parsed.HasFlag('r')
	force := parsed.HasFlag('f')

	paths := parsed.Positionals()
	if len(paths) == 0 {
		s.Println("rm: missing operand")
		return
	}

	for _, pattern := range expandGlobs(s.fs, paths) {
		s.sleep(s.rmDelay)
		err := s.fs.Remove(pattern, recursive)
		if err != nil && !force {
			s.Println(fmt.Sprintf("rm: %s: %s", pattern, errText(err)))
		}
	}
}

func cmdCat(s *Shell, args []string) {
	if len(args) == 0 {
		s.Println("Usage: cat filename")
		return
	}
	for _, p := range args {
		content, err := s.fs.Read(p)
		if err != nil {
			s.Println(fmt.Sprintf("cat: cannot open %s: %s", p, errText(err)))
			continue
		}
		s.Printf("%s", content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			s.Printf("\n")
		}
	}
}

func cmdEcho(s *Shell, args []string) {
	s.Println(strings.Join(args, " "))
}

// expandGlobs replaces arguments containing glob metacharacters with their
// matches. Patterns that match nothing pass through unchanged so the command
// reports the usual error on the literal name.
func expandGlobs(fs *vfs.FileSystem, paths []string) []string {
	var out []string
	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[") {
			out = append(out, p)
			continue
		}
		matches := fs.Glob(p)
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

// errText maps filesystem errors to the classic capitalized messages the
// terminal printed.
func errText(err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return "No such file or directory"
	case errors.Is(err, vfs.ErrNotADirectory):
		return "Not a directory"
	case errors.Is(err, vfs.ErrIsADirectory):
		return "Is a directory"
	case errors.Is(err, vfs.ErrExists):
		return "File exists"
	case errors.Is(err, vfs.ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, vfs.ErrDirectoryNotEmpty):
		return "Directory not empty"
	}
	return err.Error()
}

func (s *Shell) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
