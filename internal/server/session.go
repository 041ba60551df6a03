package server

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taigrr/colorhash"

	"github.com/nonightshift/scosim/internal/clock"
	"github.com/nonightshift/scosim/internal/config"
	"github.com/nonightshift/scosim/internal/modem"
	"github.com/nonightshift/scosim/internal/proc"
	"github.com/nonightshift/scosim/internal/shell"
	"github.com/nonightshift/scosim/internal/snapshot"
	"github.com/nonightshift/scosim/internal/vfs"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrUnknownUser     = errors.New("unknown user")
)

// ttyLines are the serial lines sessions get assigned to. The line is
// derived from a colorhash of the session id so a given session always
// lands on the same tty.
var ttyLines = []string{"tty1a", "tty1b", "tty2", "tty3", "tty4", "tty5", "tty6", "tty7"}

// Session is one browser-facing terminal. Each session owns a private
// filesystem, process table, and clock; a dedicated goroutine runs the
// shell loop so sessions never share mutable state.
type Session struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	TTY       string    `json:"tty"`
	CreatedAt time.Time `json:"created_at"`

	in   *io.PipeWriter
	out  *outputBuffer
	done chan struct{}
}

// Input feeds one command line to the session's shell.
func (s *Session) Input(line string) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	_, err := io.WriteString(s.in, line+"\n")
	if err != nil {
		return ErrSessionClosed
	}
	return nil
}

// Output drains everything the shell has written since the last call.
func (s *Session) Output() string {
	return s.out.Drain()
}

// Done reports whether the shell loop has exited.
func (s *Session) Done() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close hangs up the line and waits for the shell goroutine to finish.
func (s *Session) Close() {
	s.in.Close()
	<-s.done
}

// outputBuffer is an io.Writer the shell goroutine writes into and HTTP
// handlers drain from.
type outputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *outputBuffer) Drain() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.buf.String()
	b.buf.Reset()
	return out
}

// SessionManager tracks live sessions.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      *config.Config
}

// NewSessionManager creates an empty manager.
func NewSessionManager(cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Create starts a new session for a configured user. The dial-in theatre
// is played into the output buffer unless skipDialin is set; the login
// prompt itself is skipped since the HTTP layer already authenticated.
func (m *SessionManager) Create(user string, skipDialin bool) (*Session, error) {
	if user == "" {
		user = "root"
	}
	if _, ok := m.cfg.Users[user]; !ok {
		return nil, ErrUnknownUser
	}

	id := uuid.NewString()
	clk := clock.New()
	fs := vfs.New(m.loadTree(clk), clk.Now)
	out := &outputBuffer{}

	inR, inW := io.Pipe()
	sess := &Session{
		ID:        id,
		User:      user,
		TTY:       ttyLines[colorhash.HashString(id)%len(ttyLines)],
		CreatedAt: time.Now(),
		in:        inW,
		out:       out,
		done:      make(chan struct{}),
	}

	// no pacing on the web transport, the browser renders instantly
	mdm := modem.New(bytes.NewReader(nil), out, m.cfg.Authenticate, clk.Now, 0)
	if !skipDialin {
		mdm.Dial()
	}
	mdm.ShowLoginScreen()
	mdm.ShowWelcome(user)

	sh := shell.New(shell.Options{
		User:       user,
		FS:         fs,
		Procs:      proc.NewTable(clk.Now),
		Clock:      clk,
		Out:        out,
		HistoryMax: m.cfg.HistoryMax,
		TarDelay:   0,
		RmDelay:    0,
	})

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	go func() {
		sh.Run(inR)
		// unblock any writer still feeding the dead line
		inR.CloseWithError(ErrSessionClosed)
		mdm.Logout(user)
		close(sess.done)
	}()

	return sess, nil
}

func (m *SessionManager) loadTree(clk *clock.Clock) *vfs.Node {
	if m.cfg.SnapshotPath != "" {
		if root, err := snapshot.Load(m.cfg.SnapshotPath, clk.Now); err == nil {
			return root
		}
	}
	return snapshot.DefaultTree(clk.Now())
}

// Get looks up a live session.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove closes a session and forgets it.
func (m *SessionManager) Remove(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Close()
	return nil
}

// List returns the live sessions sorted by creation time.
func (m *SessionManager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// CloseAll tears down every session, for server shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}
