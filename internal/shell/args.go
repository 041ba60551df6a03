package shell

import "strings"

// Args holds parsed Unix-style command arguments: combined short flags
// (-rf, -la), long options (--name=value), and positionals. Everything
// after "--" is positional.
type Args struct {
	flags       map[rune]bool
	options     map[string]string
	positionals []string
}

// ParseArgs parses an argument list in the classic Unix style.
func ParseArgs(argv []string) *Args {
	a := &Args{
		flags:   make(map[rune]bool),
		options: make(map[string]string),
	}
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			a.positionals = append(a.positionals, argv[i+1:]...)
			return a
		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			name := arg[2:]
			if key, value, ok := strings.Cut(name, "="); ok {
				a.options[key] = value
			} else {
				a.options[name] = ""
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			for _, c := range arg[1:] {
				a.flags[c] = true
			}
		default:
			a.positionals = append(a.positionals, arg)
		}
	}
	return a
}

// HasFlag reports whether any of the given short flags is present.
func (a *Args) HasFlag(flags ...rune) bool {
	for _, f := range flags {
		if a.flags[f] {
			return true
		}
	}
	return false
}

// Option returns a long option's value and whether it was given.
func (a *Args) Option(name string) (string, bool) {
	v, ok := a.options[name]
	return v, ok
}

// Positionals returns the non-option arguments in order.
func (a *Args) Positionals() []string {
	return a.positionals
}
