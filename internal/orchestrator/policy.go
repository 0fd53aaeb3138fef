package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/arlo-cli/arlo/internal/config"
	"github.com/arlo-cli/arlo/internal/ui"
)

// PolicyService decides whether a tool call may proceed.
type PolicyService interface {
	CheckTool(ctx context.Context, toolName string, args map[string]any) error
}

// shellToolNames are the tools that execute arbitrary commands and therefore
// go through the confirmation flow. Everything else is workspace-sandboxed.
var shellToolNames = map[string]bool{
	"run_bash":       true,
	"run_powershell": true,
}

// policyService gates shell tools on the configured allow/deny lists and,
// when required, an interactive confirmation prompt.
type policyService struct {
	config *config.Config
	ui     ui.UserInterface

	mu           sync.RWMutex // protects sessionAllow
	sessionAllow map[string]bool
}

// NewPolicyService creates a PolicyService backed by the shell configuration.
func NewPolicyService(cfg *config.Config, userInterface ui.UserInterface) PolicyService {
	if cfg == nil {
		panic("cfg is required")
	}
	if userInterface == nil {
		panic("userInterface is required")
	}
	return &policyService{
		config:       cfg,
		ui:           userInterface,
		sessionAllow: make(map[string]bool),
	}
}

// CheckTool validates if a tool is allowed to run with the given arguments.
func (p *policyService) CheckTool(ctx context.Context, toolName string, args map[string]any) error {
	if toolName == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if !shellToolNames[toolName] {
		return nil
	}

	command, _ := args["command"].(string)
	root := commandRoot(command)
	if root == "" {
		return fmt.Errorf("invalid command")
	}

	p.mu.RLock()
	if p.sessionAllow[root] {
		p.mu.RUnlock()
		return nil
	}
	if slices.Contains(p.config.Shell.AllowedCommands, root) {
		p.mu.RUnlock()
		return nil
	}
	if slices.Contains(p.config.Shell.DeniedCommands, root) {
		p.mu.RUnlock()
		return fmt.Errorf("command '%s' is denied by policy", root)
	}
	p.mu.RUnlock()

	if !p.config.Shell.RequireConfirm {
		return nil
	}

	prompt := fmt.Sprintf("Agent wants to execute shell command:\n  %s\nAllow this command?", command)
	decision, err := p.ui.ReadPermission(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to get user permission: %w", err)
	}

	switch decision {
	case ui.DecisionAllow:
		return nil
	case ui.DecisionDeny:
		return fmt.Errorf("user denied command '%s'", root)
	case ui.DecisionAllowAlways:
		p.mu.Lock()
		p.sessionAllow[root] = true
		p.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("invalid permission decision: %s", decision)
	}
}

// commandRoot extracts the base name of the first word of a command string.
// Example: "/usr/bin/docker run -it ubuntu" returns "docker".
func commandRoot(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}
