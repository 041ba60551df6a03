// Package proc implements the simulated Unix process table behind ps and
// kill. The table is seeded from a JSON file or from built-in defaults and
// is constructed once per deployment; nothing here is global.
package proc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for package proc.
var (
	ErrNoSuchProcess = errors.New("no such process")
	ErrNotPermitted  = errors.New("operation not permitted")
)

// Process is a single entry in the simulated process table.
type Process struct {
	PID     int    `json:"pid"`
	PPID    int    `json:"ppid"`
	UID     string `json:"uid"`
	Command string `json:"command"`
	TTY     string `json:"tty"`
	STime   string `json:"stime"`
	CPUTime string `json:"cputime"`
	Status  string `json:"status"`
	C       int    `json:"c"` // CPU usage percentage column
}

// Table is the simulated process table.
type Table struct {
	processes map[int]*Process
	nextPID   int
	now       func() time.Time
}

type tableDoc struct {
	Processes []Process `json:"processes"`
}

// NewTable creates a table seeded with the default system daemons.
func NewTable(now func() time.Time) *Table {
	if now == nil {
		now = time.Now
	}
	t := &Table{processes: make(map[int]*Process), nextPID: 1000, now: now}
	t.seedDefaults()
	return t
}

// LoadTable reads a process table seed file. A missing file falls back to
// the built-in defaults; a malformed file is an error.
func LoadTable(path string, now func() time.Time) (*Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewTable(now), nil
	}
	if err != nil {
		return nil, err
	}
	var doc tableDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing process table %s: %w", path, err)
	}
	if now == nil {
		now = time.Now
	}
	t := &Table{processes: make(map[int]*Process), nextPID: 1000, now: now}
	for i := range doc.Processes {
		p := doc.Processes[i]
		t.Add(&p)
	}
	return t, nil
}

func (t *Table) seedDefaults() {
	defaults := []*Process{
		{PID: 1, PPID: 0, UID: "root", Command: "/etc/init", TTY: "?", STime: "Nov 01", CPUTime: "0:03", Status: "running"},
		{PID: 23, PPID: 1, UID: "root", Command: "/etc/cron", TTY: "?", STime: "Nov 01", CPUTime: "0:00", Status: "running"},
		{PID: 45, PPID: 1, UID: "root", Command: "/etc/syslogd", TTY: "?", STime: "Nov 01", CPUTime: "0:12", Status: "running"},
		{PID: 156, PPID: 1, UID: "root", Command: "/usr/lib/sendmail", TTY: "?", STime: "Nov 02", CPUTime: "1:23", Status: "running"},
		{PID: 234, PPID: 1, UID: "root", Command: "/usr/sbin/inetd", TTY: "?", STime: "Nov 03", CPUTime: "0:45", Status: "running"},
	}
	for _, p := range defaults {
		t.Add(p)
	}
}

// Add inserts a process, tracking the high-water PID for Spawn.
func (t *Table) Add(p *Process) {
	if p.Status == "" {
		p.Status = "running"
	}
	t.processes[p.PID] = p
	if p.PID >= t.nextPID {
		t.nextPID = p.PID + 1
	}
}

// Remove deletes a process by PID, reporting whether it existed.
func (t *Table) Remove(pid int) bool {
	if _, ok := t.processes[pid]; !ok {
		return false
	}
	delete(t.processes, pid)
	return true
}

// Get returns the process with the given PID, or nil.
func (t *Table) Get(pid int) *Process {
	return t.processes[pid]
}

// All returns every process sorted by PID.
func (t *Table) All() []*Process {
	out := make([]*Process, 0, len(t.processes))
	for _, p := range t.processes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// ByUser returns the user's processes sorted by PID.
func (t *Table) ByUser(uid string) []*Process {
	var out []*Process
	for _, p := range t.processes {
		if p.UID == uid {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Spawn creates a new process with the next free PID.
func (t *Table) Spawn(uid, command string, ppid int, tty string) *Process {
	p := &Process{
		PID:     t.nextPID,
		PPID:    ppid,
		UID:     uid,
		Command: command,
		TTY:     tty,
		STime:   t.now().Format("15:04"),
		CPUTime: "0:00",
		Status:  "running",
	}
	t.nextPID++
	t.Add(p)
	return p
}

// Kill simulates sending a signal to a process. PID 1 is protected. Both
// SIGTERM and SIGKILL remove the entry; the distinction only matters for
// the message a caller might print.
func (t *Table) Kill(pid, signal int) error {
	p := t.processes[pid]
	if p == nil {
		return fmt.Errorf("kill %d: %w", pid, ErrNoSuchProcess)
	}
	if pid == 1 {
		return fmt.Errorf("kill %d: %w", pid, ErrNotPermitted)
	}
	t.Remove(pid)
	return nil
}

// FormatPS renders the table for ps output. Full listing is the ps -ef
// column set; the short form shows only PID, TTY, TIME, and the command
// basename. filterUser narrows the short form to one user's processes.
func (t *Table) FormatPS(full bool, filterUser string) []string {
	var procs []*Process
	if filterUser != "" {
		procs = t.ByUser(filterUser)
	} else {
		procs = t.All()
	}

	var out []string
	if full {
		out = append(out, "  UID   PID  PPID  C    STIME TTY      TIME COMMAND")
		for _, p := range procs {
			out = append(out, fmt.Sprintf("  %-8s%5d%6d%3d %8s %-8s %4s %s",
				p.UID, p.PID, p.PPID, p.C, p.STime, p.TTY, p.CPUTime, p.Command))
		}
		return out
	}

	out = append(out, "  PID TTY      TIME COMMAND")
	for _, p := range procs {
		out = append(out, fmt.Sprintf(" %4d %-8s %4s %s", p.PID, p.TTY, p.CPUTime, commandName(p.Command)))
	}
	return out
}

// commandName extracts the basename of the first word of a command line.
func commandName(command string) string {
	first := command
	if i := strings.IndexByte(first, ' '); i >= 0 {
		first = first[:i]
	}
	if i := strings.LastIndexByte(first, '/'); i >= 0 {
		first = first[i+1:]
	}
	return first
}

// Save writes the current table back to a JSON seed file.
func (t *Table) Save(path string) error {
	doc := tableDoc{}
	for _, p := range t.All() {
		doc.Processes = append(doc.Processes, *p)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
