package shell

import (
	"sort"
	"strings"
)

func cmdClear(s *Shell, args []string) {
	s.Printf("%s", strings.Repeat("\n", 50))
}

func cmdHelp(s *Shell, args []string) {
	s.Println("")
	s.Println("Available UNIX commands:")
	s.Println(strings.Repeat("-", 60))
	s.Println("  ls [-l] [path]  - list directory contents")
	s.Println("  cd [path]       - change directory")
	s.Println("  pwd             - print working directory")
	s.Println("  mkdir <dir>     - create directory")
	s.Println("  alias [name[=value]] - define or display aliases")
	s.Println("  tar cvf <file> <dir> - create tar archive")
	s.Println("  tar xvf <file>  - extract tar archive")
	s.Println("  date            - print system date and time")
	s.Println("  who             - display logged in users")
	s.Println("  w               - display users and their activities")
	s.Println("  whoami          - print effective user name")
	s.Println("  uptime          - display system uptime")
	s.Println("  df              - report filesystem disk space usage")
	s.Println("  ps [-ef]        - report process status")
	s.Println("  uname [-a]      - print system information")
	s.Println("  cat <file>      - concatenate and print files")
	s.Println("  kill [-sig] pid - send signal to a process")
	s.Println("  clear           - clear the terminal screen")
	s.Println("  history         - show command history")
	s.Println("  exit, logout    - log out of the system")
	s.Println(strings.Repeat("-", 60))
}

func cmdAlias(s *Shell, args []string) {
	if len(args) == 0 {
		names := make([]string, 0, len(s.aliases))
		for name := range s.aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s.Println(name + "='" + s.aliases[name] + "'")
		}
		return
	}

	def := strings.Join(args, " ")
	if name, value, ok := strings.Cut(def, "="); ok {
		s.aliases[name] = strings.Trim(value, "'\"")
		return
	}
	if value, ok := s.aliases[def]; ok {
		s.Println(def + "='" + value + "'")
		return
	}
	s.Println("alias: " + def + ": not found")
}
