package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/arlo-cli/arlo/internal/config"
	"github.com/arlo-cli/arlo/internal/contextmgr"
	chat "github.com/arlo-cli/arlo/internal/session/model"
	"github.com/arlo-cli/arlo/internal/tool/file"
)

// conversation is the slice of session behavior the commands need.
type conversation interface {
	Clear()
	Model() string
	SwitchModel(name string) error
	ToggleFuzzy() bool
	ContextInfo() contextmgr.ContextInfo
	Append(msg chat.Message)
	RemoveMatching(match func(chat.Message) bool) int
	ExportJSON(now time.Time) ([]byte, error)
	WorkingDir() string
	UpdateWorkingDir(dir string)
}

// modelProvider lists and switches provider models.
type modelProvider interface {
	ListModels(ctx context.Context) ([]string, error)
	SetModel(name string) error
}

// fileReader reads workspace files.
type fileReader interface {
	Read(path string, maxBytes int64) (*file.ReadResult, error)
}

// workspaceIndex enumerates and fuzzily resolves workspace paths.
type workspaceIndex interface {
	Files(max int) ([]string, error)
	ResolveFuzzy(fragment string) (string, int, error)
}

// exportStore persists exported conversations.
type exportStore interface {
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
}

// Deps carries everything the built-in commands are wired with.
type Deps struct {
	Conversation conversation
	Provider     modelProvider
	Files        fileReader
	Index        workspaceIndex
	Store        exportStore
	Config       *config.Config

	// MaxReadBytes returns the per-file read ceiling for the active model.
	MaxReadBytes func() int64

	// ChangeRoot re-targets the tool services at a new workspace root and
	// returns the canonical path.
	ChangeRoot func(path string) (string, error)

	// Now is injected for deterministic export filenames in tests.
	Now func() time.Time

	// LookPath probes for shell binaries; exec.LookPath in production.
	LookPath func(name string) (string, error)
}

// Builtin returns the full command set wired against deps.
func Builtin(deps Deps) []Command {
	return []Command{
		exitCommand{},
		clsCommand{},
		clearCommand{conv: deps.Conversation},
		contextCommand{conv: deps.Conversation},
		exportCommand{conv: deps.Conversation, store: deps.Store, now: deps.Now},
		modelCommand{conv: deps.Conversation, provider: deps.Provider},
		reasonerCommand{conv: deps.Conversation, provider: deps.Provider, config: deps.Config},
		fuzzyCommand{conv: deps.Conversation},
		addCommand{
			conv:         deps.Conversation,
			files:        deps.Files,
			index:        deps.Index,
			config:       deps.Config,
			maxReadBytes: deps.MaxReadBytes,
		},
		removeCommand{conv: deps.Conversation, index: deps.Index},
		folderCommand{conv: deps.Conversation, changeRoot: deps.ChangeRoot},
		osCommand{lookPath: deps.LookPath},
	}
}

type exitCommand struct{}

func (exitCommand) Name() string        { return "exit" }
func (exitCommand) Description() string { return "Quit the program" }
func (exitCommand) Execute(ctx context.Context, args string) (Result, error) {
	return Result{Output: "Goodbye!", Quit: true}, nil
}

type clsCommand struct{}

func (clsCommand) Name() string        { return "cls" }
func (clsCommand) Description() string { return "Clear the screen" }
func (clsCommand) Execute(ctx context.Context, args string) (Result, error) {
	return Result{ClearScreen: true}, nil
}

type clearCommand struct {
	conv conversation
}

func (clearCommand) Name() string        { return "clear" }
func (clearCommand) Description() string { return "Clear the conversation history" }
func (c clearCommand) Execute(ctx context.Context, args string) (Result, error) {
	c.conv.Clear()
	return Result{Output: "Conversation history cleared."}, nil
}

type contextCommand struct {
	conv conversation
}

func (contextCommand) Name() string        { return "context" }
func (contextCommand) Description() string { return "Show context window usage" }
func (c contextCommand) Execute(ctx context.Context, args string) (Result, error) {
	info := c.conv.ContextInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", info.Model)
	fmt.Fprintf(&b, "Messages: %d\n", info.Messages)
	fmt.Fprintf(&b, "Estimated tokens: %d / %d (%.1f%%)", info.EstimatedTokens, info.MaxTokens, info.UsagePercent)
	if info.CriticalLimit {
		b.WriteString("\nContext is critically full; older messages will be truncated before the next call.")
	} else if info.ApproachingLimit {
		b.WriteString("\nContext is filling up; consider /clear.")
	}
	return Result{Output: b.String()}, nil
}

type exportCommand struct {
	conv  conversation
	store exportStore
	now   func() time.Time
}

func (exportCommand) Name() string        { return "export" }
func (exportCommand) Description() string { return "Export the conversation to a JSON file" }
func (c exportCommand) Execute(ctx context.Context, args string) (Result, error) {
	now := c.now()
	data, err := c.conv.ExportJSON(now)
	if err != nil {
		return Result{}, fmt.Errorf("failed to export conversation: %w", err)
	}

	name := fmt.Sprintf("conversation_export_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(c.conv.WorkingDir(), name)
	if err := c.store.WriteFileAtomic(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write export: %w", err)
	}
	return Result{Output: fmt.Sprintf("Conversation exported to %s", path)}, nil
}

type modelCommand struct {
	conv     conversation
	provider modelProvider
}

func (modelCommand) Name() string        { return "model" }
func (modelCommand) Description() string { return "List models, or switch with /model <name>" }
func (c modelCommand) Execute(ctx context.Context, args string) (Result, error) {
	if args == "" {
		models, err := c.provider.ListModels(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to list models: %w", err)
		}
		current := c.conv.Model()

		var b strings.Builder
		b.WriteString("Available models:\n")
		for _, m := range models {
			marker := "  "
			if m == current {
				marker = "* "
			}
			fmt.Fprintf(&b, "%s%s\n", marker, m)
		}
		return Result{Output: strings.TrimRight(b.String(), "\n")}, nil
	}

	if err := c.provider.SetModel(args); err != nil {
		return Result{}, fmt.Errorf("failed to switch model: %w", err)
	}
	if err := c.conv.SwitchModel(args); err != nil {
		return Result{}, err
	}
	info := c.conv.ContextInfo()
	return Result{Output: fmt.Sprintf("Switched to %s (context window %d tokens)", args, info.MaxTokens)}, nil
}

type reasonerCommand struct {
	conv     conversation
	provider modelProvider
	config   *config.Config
}

func (reasonerCommand) Name() string { return "reasoner" }
func (reasonerCommand) Description() string {
	return "Toggle between the default and reasoner models"
}
func (c reasonerCommand) Execute(ctx context.Context, args string) (Result, error) {
	target := c.config.Models.ReasonerModel
	if c.conv.Model() == target {
		target = c.config.Models.DefaultModel
	}

	if err := c.provider.SetModel(target); err != nil {
		return Result{}, fmt.Errorf("failed to switch model: %w", err)
	}
	if err := c.conv.SwitchModel(target); err != nil {
		return Result{}, err
	}
	info := c.conv.ContextInfo()
	return Result{Output: fmt.Sprintf("Switched to %s (context window %d tokens)", target, info.MaxTokens)}, nil
}

type fuzzyCommand struct {
	conv conversation
}

func (fuzzyCommand) Name() string        { return "fuzzy" }
func (fuzzyCommand) Description() string { return "Toggle fuzzy snippet matching for edits" }
func (c fuzzyCommand) Execute(ctx context.Context, args string) (Result, error) {
	if c.conv.ToggleFuzzy() {
		return Result{Output: "Fuzzy matching enabled."}, nil
	}
	return Result{Output: "Fuzzy matching disabled."}, nil
}

type addCommand struct {
	conv         conversation
	files        fileReader
	index        workspaceIndex
	config       *config.Config
	maxReadBytes func() int64
}

func (addCommand) Name() string        { return "add" }
func (addCommand) Description() string { return "Add a file (or directory) to the conversation" }
func (c addCommand) Execute(ctx context.Context, args string) (Result, error) {
	if args == "" {
		return Result{}, errors.New("usage: /add <path>")
	}

	result, err := c.files.Read(args, c.maxReadBytes())
	switch {
	case err == nil:
		c.appendFile(result)
		return Result{Output: fmt.Sprintf("Added %s to the conversation.", result.RelativePath)}, nil

	case errors.Is(err, file.ErrIsDirectory):
		return c.addDirectory(args)

	case errors.Is(err, file.ErrFileMissing):
		resolved, score, rerr := c.index.ResolveFuzzy(args)
		if rerr != nil {
			return Result{}, fmt.Errorf("no file matching %q: %w", args, rerr)
		}
		result, err := c.files.Read(resolved, c.maxReadBytes())
		if err != nil {
			return Result{}, err
		}
		c.appendFile(result)
		return Result{Output: fmt.Sprintf("Added %s (fuzzy match for %q, score %d).", result.RelativePath, args, score)}, nil

	default:
		return Result{}, err
	}
}

func (c addCommand) appendFile(r *file.ReadResult) {
	content := fmt.Sprintf("Content of %s:\n\n%s", r.RelativePath, r.Content)
	c.conv.Append(chat.UserMessage(content))
}

// isFileContext matches the messages appendFile produces for relPath, so
// /remove can undo an /add.
func isFileContext(relPath string) func(chat.Message) bool {
	prefix := fmt.Sprintf("Content of %s:\n", relPath)
	return func(msg chat.Message) bool {
		return msg.Role == chat.RoleUser && strings.HasPrefix(msg.Content, prefix)
	}
}

type removeCommand struct {
	conv  conversation
	index workspaceIndex
}

func (removeCommand) Name() string        { return "remove" }
func (removeCommand) Description() string { return "Remove a previously added file from the conversation" }
func (c removeCommand) Execute(ctx context.Context, args string) (Result, error) {
	if args == "" {
		return Result{}, errors.New("usage: /remove <path>")
	}

	if n := c.conv.RemoveMatching(isFileContext(args)); n > 0 {
		return Result{Output: fmt.Sprintf("Removed %s from the conversation (%d message(s)).", args, n)}, nil
	}

	resolved, score, err := c.index.ResolveFuzzy(args)
	if err != nil {
		return Result{Output: fmt.Sprintf("No added file matching %q in the conversation.", args)}, nil
	}
	if n := c.conv.RemoveMatching(isFileContext(resolved)); n > 0 {
		return Result{Output: fmt.Sprintf("Removed %s from the conversation (fuzzy match for %q, score %d).", resolved, args, score)}, nil
	}
	return Result{Output: fmt.Sprintf("No added file matching %q in the conversation.", args)}, nil
}

// addDirectory adds every readable file under dir, capped by configuration.
func (c addCommand) addDirectory(dir string) (Result, error) {
	entries, err := c.index.Files(0)
	if err != nil {
		return Result{}, err
	}

	prefix := strings.TrimSuffix(filepath.ToSlash(dir), "/") + "/"
	added := 0
	for _, rel := range entries {
		if !strings.HasPrefix(rel, prefix) {
			continue
		}
		if added >= c.config.Files.MaxFilesInAddDir {
			return Result{Output: fmt.Sprintf("Added %d files from %s (limit reached).", added, dir)}, nil
		}
		result, err := c.files.Read(rel, c.maxReadBytes())
		if err != nil {
			// Binary or oversized files are skipped, not fatal.
			continue
		}
		c.appendFile(result)
		added++
	}

	if added == 0 {
		return Result{}, fmt.Errorf("no readable files under %q", dir)
	}
	return Result{Output: fmt.Sprintf("Added %d files from %s.", added, dir)}, nil
}

type folderCommand struct {
	conv       conversation
	changeRoot func(path string) (string, error)
}

func (folderCommand) Name() string        { return "folder" }
func (folderCommand) Description() string { return "Change the workspace root" }
func (c folderCommand) Execute(ctx context.Context, args string) (Result, error) {
	if args == "" {
		return Result{Output: fmt.Sprintf("Current workspace: %s", c.conv.WorkingDir())}, nil
	}

	root, err := c.changeRoot(args)
	if err != nil {
		return Result{}, fmt.Errorf("cannot change workspace: %w", err)
	}
	c.conv.UpdateWorkingDir(root)
	return Result{Output: fmt.Sprintf("Workspace changed to %s", root)}, nil
}

type osCommand struct {
	lookPath func(name string) (string, error)
}

func (osCommand) Name() string        { return "os" }
func (osCommand) Description() string { return "Show OS and available shells" }
func (c osCommand) Execute(ctx context.Context, args string) (Result, error) {
	var shells []string
	for _, shell := range []string{"bash", "powershell"} {
		if _, err := c.lookPath(shell); err == nil {
			shells = append(shells, shell)
		}
	}
	if len(shells) == 0 {
		shells = []string{"none detected"}
	}
	return Result{Output: fmt.Sprintf("OS: %s/%s\nShells: %s", runtime.GOOS, runtime.GOARCH, strings.Join(shells, ", "))}, nil
}
