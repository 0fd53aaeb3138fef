// Package main wires the arlo coding agent: terminal UI, workspace tool
// services, a model provider picked from the environment, and the REPL
// that routes input between slash commands and the orchestrator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/arlo-cli/arlo/internal/command"
	"github.com/arlo-cli/arlo/internal/config"
	"github.com/arlo-cli/arlo/internal/contextmgr"
	"github.com/arlo-cli/arlo/internal/orchestrator"
	"github.com/arlo-cli/arlo/internal/orchestrator/adapter"
	"github.com/arlo-cli/arlo/internal/provider"
	"github.com/arlo-cli/arlo/internal/provider/gemini"
	"github.com/arlo-cli/arlo/internal/provider/groq"
	"github.com/arlo-cli/arlo/internal/session"
	"github.com/arlo-cli/arlo/internal/tool/directory"
	"github.com/arlo-cli/arlo/internal/tool/file"
	"github.com/arlo-cli/arlo/internal/tool/fsutil"
	"github.com/arlo-cli/arlo/internal/tool/gitutil"
	"github.com/arlo-cli/arlo/internal/tool/pathutil"
	"github.com/arlo-cli/arlo/internal/tool/shell"
	"github.com/arlo-cli/arlo/internal/ui"
)

const geminiDefaultModel = "gemini-2.0-flash"

// workspace bundles the tool services rooted at a single directory. A
// /folder switch replaces the whole bundle rather than mutating it.
type workspace struct {
	root    string
	files   *file.Service
	scanner *directory.Scanner
	runner  *shell.Runner
}

func newWorkspace(root string, cfg *config.Config) (*workspace, error) {
	canonical, err := pathutil.CanonicaliseRoot(root)
	if err != nil {
		return nil, err
	}

	fs := fsutil.NewOSFileSystem()
	detector := fsutil.NewBinaryDetector(cfg.Files.BinarySampleSize)
	resolver := pathutil.NewResolver(canonical)
	files := file.NewService(fs, detector, resolver, cfg)

	// An unreadable .gitignore degrades to scanning everything.
	var scanner *directory.Scanner
	if matcher, err := gitutil.NewIgnoreMatcher(canonical, fs); err != nil {
		scanner = directory.NewScanner(fs, gitutil.NoOpMatcher{}, cfg, canonical)
	} else {
		scanner = directory.NewScanner(fs, matcher, cfg, canonical)
	}

	executor := shell.NewExecutor(detector, cfg.Shell.MaxOutputSize)
	runner := shell.NewRunner(executor, cfg, canonical)

	return &workspace{
		root:    canonical,
		files:   files,
		scanner: scanner,
		runner:  runner,
	}, nil
}

// app holds the mutable wiring that a /folder switch rebuilds. All reads
// and writes happen on the REPL goroutine.
type app struct {
	cfg  *config.Config
	ws   *workspace
	sess *session.Session
	orch *orchestrator.Orchestrator
}

// workspaceFiles and workspaceIndexView forward to the current workspace
// so commands keep working across /folder rebuilds.
type workspaceFiles struct{ app *app }

func (w workspaceFiles) Read(path string, maxBytes int64) (*file.ReadResult, error) {
	return w.app.ws.files.Read(path, maxBytes)
}

type workspaceIndexView struct{ app *app }

func (w workspaceIndexView) Files(max int) ([]string, error) {
	return w.app.ws.scanner.Files(max)
}

func (w workspaceIndexView) ResolveFuzzy(fragment string) (string, int, error) {
	return w.app.ws.scanner.ResolveFuzzy(fragment)
}

func envSnapshot(cfg *config.Config) session.SnapshotFunc {
	return func(workingDir string) session.EnvSnapshot {
		snap := session.EnvSnapshot{
			WorkingDir: workingDir,
			OS:         runtime.GOOS + "/" + runtime.GOARCH,
			Shells:     detectShells(),
			GitStatus:  "not a git repository",
			Tree:       "(workspace tree unavailable)",
		}

		if ws, err := newWorkspace(workingDir, cfg); err == nil {
			if tree, err := ws.scanner.Tree(); err == nil {
				snap.Tree = tree
			}
		}

		if repo := gitutil.Snapshot(workingDir); repo.IsRepo {
			state := "clean"
			if repo.Dirty {
				state = "dirty"
			}
			snap.GitStatus = fmt.Sprintf("branch %s, %s", repo.Branch, state)
		}
		return snap
	}
}

func detectShells() string {
	var found []string
	for _, name := range []string{"bash", "powershell", "pwsh"} {
		if _, err := exec.LookPath(name); err == nil {
			found = append(found, name)
		}
	}
	if len(found) == 0 {
		return "none detected"
	}
	return strings.Join(found, ", ")
}

// newProvider picks a backend from the environment: Groq when GROQ_API_KEY
// is set, otherwise Gemini via GEMINI_API_KEY.
func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, string, error) {
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		return groq.NewClient(apiKey, cfg.Models.DefaultModel), cfg.Models.DefaultModel, nil
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := gemini.NewRealGeminiClient(ctx, apiKey)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini.New(client, geminiDefaultModel), geminiDefaultModel, nil
	}

	return nil, "", fmt.Errorf("no API key found: set GROQ_API_KEY or GEMINI_API_KEY")
}

func buildTools(a *app) []adapter.Tool {
	maxReadBytes := func() int64 {
		return file.MaxReadBytes(a.cfg.ContextWindow(a.sess.Model()))
	}
	return []adapter.Tool{
		adapter.NewReadFile(a.ws.files, maxReadBytes),
		adapter.NewReadMultipleFiles(a.ws.files, a.cfg, maxReadBytes),
		adapter.NewCreateFile(a.ws.files),
		adapter.NewCreateMultipleFiles(a.ws.files),
		adapter.NewEditFile(a.ws.files, a.sess.FuzzyEnabled),
		adapter.NewRunBash(a.ws.runner),
		adapter.NewRunPowerShell(a.ws.runner),
	}
}

func buildOrchestrator(a *app, p provider.Provider, userInterface ui.UserInterface) *orchestrator.Orchestrator {
	policy := orchestrator.NewPolicyService(a.cfg, userInterface)
	return orchestrator.New(p, policy, userInterface, a.sess, buildTools(a), a.cfg.Conversation.MaxReasoningSteps)
}

func main() {
	userInterface := ui.New(ui.NewGlamourRenderer())
	runInteractive(context.Background(), userInterface)
}

func runInteractive(ctx context.Context, userInterface *ui.UI) {
	replCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-userInterface.Ready()
		repl(replCtx, userInterface)
	}()

	// The UI owns the main goroutine until exit.
	if err := userInterface.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running UI: %v\n", err)
		os.Exit(1)
	}

	cancel()
	wg.Wait()
}

func repl(ctx context.Context, userInterface *ui.UI) {
	userInterface.WriteStatus("thinking", "Initializing workspace...")

	cfg, err := config.Load()
	if err != nil {
		failStartup(userInterface, fmt.Sprintf("Error loading config: %v", err))
		return
	}

	workingDir, err := os.Getwd()
	if err != nil {
		failStartup(userInterface, fmt.Sprintf("Error: failed to get working directory: %v", err))
		return
	}

	ws, err := newWorkspace(workingDir, cfg)
	if err != nil {
		failStartup(userInterface, fmt.Sprintf("Error: failed to initialize workspace: %v", err))
		return
	}

	userInterface.WriteStatus("thinking", "Initializing AI...")

	p, modelName, err := newProvider(ctx, cfg)
	if err != nil {
		failStartup(userInterface, fmt.Sprintf("Error initializing provider: %v", err))
		return
	}

	accountant := contextmgr.NewAccountant(contextmgr.NewEstimator(), cfg)
	truncator := contextmgr.NewTruncator(accountant)
	sess := session.New(cfg, accountant, truncator, envSnapshot(cfg), ws.root)
	if modelName != cfg.Models.DefaultModel {
		if err := sess.SwitchModel(modelName); err != nil {
			failStartup(userInterface, fmt.Sprintf("Error selecting model: %v", err))
			return
		}
	}

	a := &app{cfg: cfg, ws: ws, sess: sess}
	a.orch = buildOrchestrator(a, p, userInterface)

	registry := command.NewRegistry(command.Builtin(command.Deps{
		Conversation: sess,
		Provider:     p,
		Files:        workspaceFiles{app: a},
		Index:        workspaceIndexView{app: a},
		Store:        fsutil.NewOSFileSystem(),
		Config:       cfg,
		MaxReadBytes: func() int64 {
			return file.MaxReadBytes(cfg.ContextWindow(sess.Model()))
		},
		ChangeRoot: func(path string) (string, error) {
			next, err := newWorkspace(pathutil.ExpandHome(path), cfg)
			if err != nil {
				return "", err
			}
			a.ws = next
			a.orch = buildOrchestrator(a, p, userInterface)
			return next.root, nil
		},
		Now:      time.Now,
		LookPath: exec.LookPath,
	})...)

	userInterface.WriteStatus("ready", "Ready")
	userInterface.WriteContextUsage(sess.Model(), sess.ContextInfo().UsagePercent)

	for {
		if ctx.Err() != nil {
			return
		}

		input, err := userInterface.ReadInput(ctx, "You:")
		if err != nil {
			return
		}
		if input == "" {
			continue
		}

		if registry.IsCommand(input) {
			result, err := registry.Execute(ctx, input)
			if err != nil {
				userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
			} else {
				if result.Output != "" {
					userInterface.WriteMessage(result.Output)
				}
				if result.ClearScreen {
					userInterface.ClearScreen()
				}
				if result.Quit {
					userInterface.Quit()
					return
				}
			}
		} else {
			state, err := a.orch.RunTurn(ctx, input)
			if err != nil {
				userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
			} else if state == orchestrator.StateStepLimitReached {
				userInterface.WriteMessage(fmt.Sprintf(
					"Reached the limit of %d reasoning steps for this turn. Send another message to continue.",
					cfg.Conversation.MaxReasoningSteps))
			}
		}

		userInterface.WriteStatus("ready", "Ready")
		userInterface.WriteContextUsage(sess.Model(), sess.ContextInfo().UsagePercent)
	}
}

func failStartup(userInterface *ui.UI, message string) {
	userInterface.WriteStatus("error", "Initialization failed")
	userInterface.WriteMessage(message)
	userInterface.WriteMessage("The application cannot start. Press Ctrl+C to exit.")
}
