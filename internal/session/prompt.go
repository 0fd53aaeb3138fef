package session

import (
	"fmt"
	"strings"
)

// EnvSnapshot captures the workspace state baked into the system prompt.
// It is taken once per session (and again on /clear or /folder) so the
// model always reasons against a current view of the workspace.
type EnvSnapshot struct {
	WorkingDir string
	OS         string
	Shells     string
	GitStatus  string
	Tree       string
}

// SnapshotFunc produces an EnvSnapshot for a working directory.
type SnapshotFunc func(workingDir string) EnvSnapshot

const promptPreamble = `You are a software engineering assistant working inside the user's project.

You have access to tools for reading, creating and editing files and for
running shell commands. Prefer tools over guessing: read a file before
editing it, and verify changes by running the project's own commands.

Rules:
- Use edit_file with the smallest snippet that uniquely identifies the
  text to change. Never rewrite a whole file to change one line.
- Paths are relative to the workspace root. You cannot touch files
  outside it.
- Shell commands run with a timeout; long-running daemons will be killed.
- When a tool fails, read the error and adjust instead of retrying the
  same call.
- Answer in plain text once the task is done. Keep answers short.`

// buildSystemPrompt renders the system message from the environment
// snapshot.
func buildSystemPrompt(snap EnvSnapshot) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nEnvironment:\n")
	fmt.Fprintf(&b, "- OS: %s\n", snap.OS)
	fmt.Fprintf(&b, "- Working directory: %s\n", snap.WorkingDir)
	if snap.Shells != "" {
		fmt.Fprintf(&b, "- Shells: %s\n", snap.Shells)
	}
	if snap.GitStatus != "" {
		fmt.Fprintf(&b, "- Git: %s\n", snap.GitStatus)
	}
	if snap.Tree != "" {
		b.WriteString("\nWorkspace layout:\n")
		b.WriteString(snap.Tree)
	}
	return b.String()
}
