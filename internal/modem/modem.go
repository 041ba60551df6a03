// Package modem replays the dial-in ritual of a 14.4k modem session: AT
// command chatter, dial tones, handshake noise, and the login banner. All
// output goes through an io.Writer so the terminal and the web transport
// share the same theatre.
package modem

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"
)

const banner = `     ███████╗ ██████╗ ██████╗     ██╗   ██╗███╗   ██╗██╗██╗  ██╗
     ██╔════╝██╔════╝██╔═══██╗    ██║   ██║████╗  ██║██║╚██╗██╔╝
     ███████╗██║     ██║   ██║    ██║   ██║██╔██╗ ██║██║ ╚███╔╝
     ╚════██║██║     ██║   ██║    ██║   ██║██║╚██╗██║██║ ██╔██╗
     ███████║╚██████╗╚██████╔╝    ╚██████╔╝██║ ╚████║██║██╔╝ ██╗
     ╚══════╝ ╚═════╝ ╚═════╝      ╚═════╝ ╚═╝  ╚═══╝╚═╝╚═╝  ╚═╝`

// Authenticator checks a username/password pair.
type Authenticator func(user, password string) bool

// Modem drives the dial-in sequence. A zero CharDelay disables all pacing,
// which is what tests and the web transport want.
type Modem struct {
	out  io.Writer
	in   *bufio.Reader
	auth Authenticator
	now  func() time.Time

	charDelay time.Duration
}

// New creates a modem bound to its line endpoints.
func New(in io.Reader, out io.Writer, auth Authenticator, now func() time.Time, charDelay time.Duration) *Modem {
	return &Modem{
		out:       out,
		in:        bufio.NewReader(in),
		auth:      auth,
		now:       now,
		charDelay: charDelay,
	}
}

// Dial plays the full connection sequence up to CONNECT.
func (m *Modem) Dial() {
	m.println("")
	m.println(strings.Repeat("=", 60))
	m.println("     MODEM COMMUNICATIONS SIMULATOR v2.4")
	m.println("     Copyright (C) 1995-1998")
	m.println(strings.Repeat("=", 60))
	m.println("")

	m.pause(500 * time.Millisecond)
	m.slowPrint("Initializing modem...")
	m.pause(300 * time.Millisecond)

	atCommands := []struct {
		cmd      string
		response string
	}{
		{"AT", "OK"},
		{"ATZ", "OK"},
		{"ATE1", "OK"},
		{"ATM1", "OK"},
		{"ATX4", "OK"},
		{"ATDT 555-1234", ""},
	}
	for _, at := range atCommands {
		m.slowPrint(at.cmd)
		m.pause(200 * time.Millisecond)
		if at.response != "" {
			m.slowPrint(at.response)
		}
		m.pause(300 * time.Millisecond)
	}

	m.println("")
	m.slowPrint("Dialing...")
	m.pause(500 * time.Millisecond)
	for i := 0; i < 7; i++ {
		fmt.Fprint(m.out, "BEEP ")
		m.pause(150 * time.Millisecond)
	}
	m.println("")
	m.println("")

	m.pause(500 * time.Millisecond)
	m.slowPrint("Connecting...")
	m.pause(800 * time.Millisecond)

	handshake := []string{
		"RRRRR.....",
		"KSSSSSHHHHhhhh....",
		"BEEEEeeeeee....",
		"WRRRRrrrrrr....",
		"CHHHhhhhh....",
	}
	for _, sound := range handshake {
		m.slowPrint(sound)
		m.pause(300 * time.Millisecond)
	}

	m.pause(500 * time.Millisecond)
	m.println("")
	m.slowPrint("CONNECT 14400/V.32bis")
	m.pause(500 * time.Millisecond)
}

// ShowLoginScreen prints the system banner and login header.
func (m *Modem) ShowLoginScreen() {
	m.println("")
	m.println(strings.Repeat("=", 60))
	m.println("")
	m.println(banner)
	m.println("")
	m.println("     SCO UNIX System V/386 Release 3.2")
	m.println("     Copyright (C) 1976-1995 The Santa Cruz Operation, Inc.")
	m.println(strings.Repeat("=", 60))
	m.println("")
	m.println("System time: " + m.now().Format("Jan 02 15:04:05 2006"))
	m.println("Last successful connection: Dec 08 23:15:42 1995")
	m.println("")
	m.println(strings.Repeat("-", 60))
}

// Login runs up to three credential attempts. It returns the authenticated
// user name, or ok=false after the third failure (the line is then dropped).
func (m *Modem) Login() (user string, ok bool) {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.println("")
		fmt.Fprint(m.out, "login: ")
		username, err := m.readLine()
		if err != nil {
			break
		}
		fmt.Fprint(m.out, "Password: ")
		password, err := m.readLine()
		if err != nil {
			break
		}

		fmt.Fprint(m.out, "Authenticating")
		for i := 0; i < 3; i++ {
			m.pause(300 * time.Millisecond)
			fmt.Fprint(m.out, ".")
		}
		m.println("")
		m.pause(500 * time.Millisecond)

		if m.auth(username, password) {
			m.println("")
			m.slowPrint(fmt.Sprintf("*** Login successful for %s ***", username))
			m.pause(500 * time.Millisecond)
			return username, true
		}

		if remaining := maxAttempts - attempt; remaining > 0 {
			m.println("")
			m.slowPrint("Login incorrect")
			m.slowPrint(fmt.Sprintf("Remaining attempts: %d", remaining))
			m.pause(500 * time.Millisecond)
		}
	}

	m.println("")
	m.slowPrint("*** Too many login failures ***")
	m.slowPrint("Disconnecting...")
	m.pause(time.Second)
	m.Disconnect()
	return "", false
}

// ShowWelcome prints the post-login message of the day.
func (m *Modem) ShowWelcome(user string) {
	m.println("")
	m.println(strings.Repeat("=", 60))
	m.println("  SCO UNIX System V/386 Release 3.2")
	m.println(strings.Repeat("=", 60))
	m.println("")
	m.println("Last login: " + m.now().Format("Mon Jan 02 15:04:05") + " on tty1a")
	m.println("Terminal: vt100")
	m.println("")
	m.println("You have mail.")
	m.println("")
	m.println(strings.Repeat("-", 60))
	m.println("SCO UNIX System V/386 Release 3.2 (scohost)")
	m.println(strings.Repeat("-", 60))
	m.println("")
}

// Logout closes the session and hangs up.
func (m *Modem) Logout(user string) {
	m.println("")
	m.println(strings.Repeat("=", 60))
	m.slowPrint("Closing session...")
	m.pause(500 * time.Millisecond)
	m.slowPrint(fmt.Sprintf("Goodbye, %s!", user))
	m.slowPrint(fmt.Sprintf("Connect time: %d minutes", 5+rand.Intn(41)))
	m.pause(500 * time.Millisecond)
	m.Disconnect()
}

// Disconnect hangs up the line.
func (m *Modem) Disconnect() {
	m.println("")
	m.slowPrint("Disconnecting...")
	m.pause(500 * time.Millisecond)
	m.slowPrint("+++ATH0")
	m.pause(300 * time.Millisecond)
	m.slowPrint("NO CARRIER")
	m.pause(300 * time.Millisecond)
	m.println("")
	m.println(strings.Repeat("=", 60))
	m.println("  Connection closed")
	m.println(strings.Repeat("=", 60))
	m.println("")
}

func (m *Modem) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (m *Modem) println(text string) {
	fmt.Fprintln(m.out, text)
}

// slowPrint writes one character at a time and finishes the line.
func (m *Modem) slowPrint(text string) {
	if m.charDelay <= 0 {
		fmt.Fprintln(m.out, text)
		return
	}
	for _, c := range text {
		fmt.Fprintf(m.out, "%c", c)
		time.Sleep(m.charDelay)
	}
	fmt.Fprintln(m.out)
}

// pause sleeps only when pacing is enabled.
func (m *Modem) pause(d time.Duration) {
	if m.charDelay > 0 {
		time.Sleep(d)
	}
}
