package shell

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// Reserved command names.
const (
	ClearCommand   = "clear"
	HelpCommand    = "help"
	WelcomeCommand = "welcome"
)

var (
	// ErrCommandNotFound is returned by Resolve when neither the registry nor
	// any alias knows the name.
	ErrCommandNotFound = errors.New("command not found")
	// ErrDisposed marks work that arrived after Dispose.
	ErrDisposed = errors.New("engine disposed")
)

// RunFunc executes a command with its joined argument string.
type RunFunc func(ctx context.Context, args string) (Result, error)

// AsyncFunc produces the output of an asynchronous command.
type AsyncFunc func(ctx context.Context) (Output, error)

// Command is a registered operation.
type Command struct {
	Name    string
	Aliases []string
	// Summary is a one-line description used by help listings.
	Summary string
	Run     RunFunc
}

// Output is a content payload plus its markup-trust flag.
type Output struct {
	Content string
	RawHTML bool
}

// Result is what a command run produces. When Async is set, Content and
// RawHTML are ignored and the engine awaits Async instead.
type Result struct {
	Content   string
	RawHTML   bool
	Async     AsyncFunc
	NoHistory bool

	// Only honoured when the resolved command is "clear".
	ClearHistory  bool
	RunAfterClear *Output
}

// Text is a shorthand for a plain synchronous result.
func Text(s string) Result { return Result{Content: s} }

// HTML is a shorthand for a trusted-markup synchronous result.
func HTML(s string) Result { return Result{Content: s, RawHTML: true} }

// Registry maps lower-case command names to commands. The engine never
// mutates it.
type Registry map[string]*Command

// NewRegistry indexes cmds by lower-cased name. Later duplicates win.
func NewRegistry(cmds ...*Command) Registry {
	reg := make(Registry, len(cmds))
	for _, c := range cmds {
		if c == nil || c.Name == "" {
			continue
		}
		reg[strings.ToLower(c.Name)] = c
	}
	return reg
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// legacy alias kept for old links that still type "support"
const (
	legacyAlias  = "support"
	legacyTarget = "contact"
)

// aliasIndex maps an alias to the canonical command name.
type aliasIndex map[string]string

// buildAliasIndex scans commands in name order so that an alias claimed by
// two commands always resolves to the alphabetically first one. Aliases that
// shadow a registered name are ignored: direct hits win.
func buildAliasIndex(reg Registry) aliasIndex {
	idx := aliasIndex{}
	for _, name := range reg.Names() {
		for _, a := range reg[name].Aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, direct := reg[a]; direct {
				continue
			}
			if _, taken := idx[a]; !taken {
				idx[a] = name
			}
		}
	}
	if _, ok := reg[legacyTarget]; ok {
		if _, direct := reg[legacyAlias]; !direct {
			if _, taken := idx[legacyAlias]; !taken {
				idx[legacyAlias] = legacyTarget
			}
		}
	}
	return idx
}

// Resolution describes how a command name was resolved.
type Resolution struct {
	Command *Command
	// Name is the registry key of Command.
	Name string
	// Typed is the name as entered (lower-cased).
	Typed string
	// ViaAlias is true when Typed is an alias of Command.Name.
	ViaAlias bool
}

// Display is the command line shown for an alias hit: "<typed> (<name>)".
func (r Resolution) Display() string {
	return r.Typed + " (" + r.Name + ")"
}

func (idx aliasIndex) resolve(reg Registry, name string) (Resolution, error) {
	if c, ok := reg[name]; ok {
		return Resolution{Command: c, Name: name, Typed: name}, nil
	}
	if canonical, ok := idx[name]; ok {
		return Resolution{Command: reg[canonical], Name: canonical, Typed: name, ViaAlias: true}, nil
	}
	return Resolution{Typed: name}, ErrCommandNotFound
}
