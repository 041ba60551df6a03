package shell

import "fmt"

func cmdDate(s *Shell, args []string) {
	s.Println(s.clock.Now().Format("Mon Jan 02 15:04:05 MST 2006"))
}

func cmdWho(s *Shell, args []string) {
	s.Println(fmt.Sprintf("%-12s tty1a        %s", s.user, s.clock.Now().Format("Jan 02 15:04")))
	s.Println("operator     tty2         Dec 10 23:15")
	s.Println("admin        tty3         Dec 11 00:22")
}

func cmdW(s *Shell, args []string) {
	now := s.clock.Now()
	s.Println(fmt.Sprintf(" %s  up 23 days,  4:32,  3 users", now.Format("15:04:05")))
	s.Println("User     tty       login@  idle   what")
	s.Println(fmt.Sprintf("%-8s tty1a     %s    0     -sh", s.user, now.Format("15:04")))
	s.Println("operator tty2      23:15    2:30  /usr/bin/vi")
	s.Println("admin    tty3      00:22    1:23  /bin/sh")
}

func cmdWhoami(s *Shell, args []string) {
	s.Println(s.user)
}

func cmdUptime(s *Shell, args []string) {
	s.Println(fmt.Sprintf(" %s  up 23 days,  4:32,  3 users,  load average: 0.15, 0.21, 0.18",
		s.clock.Now().Format("15:04:05")))
}

func cmdDf(s *Shell, args []string) {
	s.Println("Filesystem            kbytes    used   avail capacity  Mounted on")
	s.Println("/dev/root              51200   28672   22528    56%    /")
	s.Println("/dev/u                256000  189440   66560    74%    /u")
	s.Println("tmpfs                  16384    1024   15360     7%    /tmp")
	s.Println("/dev/swap              65536   12288   53248    19%    swap")
}

func cmdUname(s *Shell, args []string) {
	parsed := ParseArgs(args)
	if parsed.HasFlag('a') {
		s.Println("SCO_SV scohost 3.2 2 i386")
		return
	}
	s.Println("SCO_SV")
}
