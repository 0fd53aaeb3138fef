// Package command implements the slash commands of the interactive
// prompt. Commands are registered in a static table at startup and
// dispatched by name; everything else on the input line goes to the model.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Result is the outcome of a slash command.
type Result struct {
	// Output is shown to the user verbatim.
	Output string
	// Quit asks the REPL to terminate.
	Quit bool
	// ClearScreen asks the UI to wipe the terminal.
	ClearScreen bool
}

// Command is one slash command.
type Command interface {
	// Name returns the command name without the leading slash
	Name() string

	// Description returns the one-line help text
	Description() string

	// Execute runs the command with everything after its name as args
	Execute(ctx context.Context, args string) (Result, error)
}

// Registry dispatches slash commands by name. The table is fixed after
// construction.
type Registry struct {
	commands map[string]Command
}

// NewRegistry builds a registry from the given commands plus the built-in
// /help. Duplicate names panic: the table is wired once at startup and a
// collision is a bug.
func NewRegistry(commands ...Command) *Registry {
	table := make(map[string]Command, len(commands)+1)
	for _, cmd := range commands {
		if _, exists := table[cmd.Name()]; exists {
			panic(fmt.Sprintf("duplicate command %q", cmd.Name()))
		}
		table[cmd.Name()] = cmd
	}

	r := &Registry{commands: table}
	table["help"] = helpCommand{registry: r}
	return r
}

// helpCommand renders the registry's own table; it is registered by
// NewRegistry so it can see every other command.
type helpCommand struct {
	registry *Registry
}

func (helpCommand) Name() string        { return "help" }
func (helpCommand) Description() string { return "Show this help" }
func (h helpCommand) Execute(ctx context.Context, args string) (Result, error) {
	return Result{Output: h.registry.Help()}, nil
}

// IsCommand reports whether an input line is addressed to the registry.
func (r *Registry) IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Execute parses and runs a slash command line.
func (r *Registry) Execute(ctx context.Context, input string) (Result, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	name, args, _ := strings.Cut(trimmed, " ")
	name = strings.ToLower(name)

	cmd, ok := r.commands[name]
	if !ok {
		return Result{}, fmt.Errorf("unknown command '/%s', try /help", name)
	}
	return cmd.Execute(ctx, strings.TrimSpace(args))
}

// Help renders the command table sorted by name.
func (r *Registry) Help() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  /%-10s %s\n", name, r.commands[name].Description())
	}
	return strings.TrimRight(b.String(), "\n")
}
