package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/arlo-cli/arlo/internal/config"
	provider "github.com/arlo-cli/arlo/internal/provider/model"
	"github.com/arlo-cli/arlo/internal/tool/file"
	"github.com/arlo-cli/arlo/internal/tool/shell"
)

// This file consolidates all tool adapters using the BaseAdapter pattern.
// Each adapter is a constructor function closing over the service it wraps.

// NewReadFile creates a read_file adapter. maxReadBytes is evaluated per
// call so the ceiling tracks the active model's context window.
func NewReadFile(files *file.Service, maxReadBytes func() int64) Tool {
	return NewBaseAdapter(
		"read_file",
		"Reads a text file from the workspace",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"path": {
					Type:        "string",
					Description: "Path to the file (relative to workspace root)",
				},
			},
			Required: []string{"path"},
		},
		func(ctx context.Context, req ReadFileRequest) (ReadFileResponse, error) {
			result, err := files.Read(req.Path, maxReadBytes())
			if err != nil {
				return ReadFileResponse{}, err
			}
			return ReadFileResponse{
				Path:    result.RelativePath,
				Size:    result.Size,
				Content: result.Content,
			}, nil
		},
	)
}

// NewReadMultipleFiles creates a read_multiple_files adapter. Per-file
// failures are reported inline; the aggregate content is capped at
// cfg.Files.MaxMultiReadSize characters.
func NewReadMultipleFiles(files *file.Service, cfg *config.Config, maxReadBytes func() int64) Tool {
	return NewBaseAdapter(
		"read_multiple_files",
		"Reads several text files from the workspace in one call",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"paths": {
					Type:        "array",
					Description: "Paths to the files (relative to workspace root)",
					Items: &provider.PropertySchema{
						Type: "string",
					},
				},
			},
			Required: []string{"paths"},
		},
		func(ctx context.Context, req ReadMultipleFilesRequest) (ReadMultipleFilesResponse, error) {
			resp := ReadMultipleFilesResponse{
				Files: make([]ReadEntry, 0, len(req.Paths)),
			}
			total := 0
			for _, path := range req.Paths {
				if total >= cfg.Files.MaxMultiReadSize {
					resp.Truncated = true
					break
				}
				result, err := files.Read(path, maxReadBytes())
				if err != nil {
					resp.Files = append(resp.Files, ReadEntry{Path: path, Error: err.Error()})
					continue
				}
				content := result.Content
				if remaining := cfg.Files.MaxMultiReadSize - total; len(content) > remaining {
					content = content[:remaining]
					resp.Truncated = true
				}
				total += len(content)
				resp.Files = append(resp.Files, ReadEntry{Path: result.RelativePath, Content: content})
			}
			return resp, nil
		},
	)
}

// NewCreateFile creates a create_file adapter
func NewCreateFile(files *file.Service) Tool {
	return NewBaseAdapter(
		"create_file",
		"Creates a new file in the workspace (fails if the file exists)",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"path": {
					Type:        "string",
					Description: "Path to the file (relative to workspace root)",
				},
				"content": {
					Type:        "string",
					Description: "File content",
				},
			},
			Required: []string{"path", "content"},
		},
		func(ctx context.Context, req CreateFileRequest) (CreateFileResponse, error) {
			result, err := files.Create(req.Path, req.Content)
			if err != nil {
				return CreateFileResponse{}, err
			}
			return CreateFileResponse{
				Path:         result.RelativePath,
				BytesWritten: result.BytesWritten,
			}, nil
		},
	)
}

// NewCreateMultipleFiles creates a create_multiple_files adapter. Files are
// created independently; one failure does not abort the rest.
func NewCreateMultipleFiles(files *file.Service) Tool {
	return NewBaseAdapter(
		"create_multiple_files",
		"Creates several new files in the workspace in one call",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"files": {
					Type:        "array",
					Description: "Files to create",
					Items: &provider.PropertySchema{
						Type: "object",
					},
				},
			},
			Required: []string{"files"},
		},
		func(ctx context.Context, req CreateMultipleFilesRequest) (CreateMultipleFilesResponse, error) {
			resp := CreateMultipleFilesResponse{
				Files: make([]CreateEntry, 0, len(req.Files)),
			}
			for _, spec := range req.Files {
				result, err := files.Create(spec.Path, spec.Content)
				if err != nil {
					resp.Files = append(resp.Files, CreateEntry{Path: spec.Path, Error: err.Error()})
					continue
				}
				resp.Files = append(resp.Files, CreateEntry{
					Path:         result.RelativePath,
					BytesWritten: result.BytesWritten,
				})
			}
			return resp, nil
		},
	)
}

// NewEditFile creates an edit_file adapter. fuzzyEnabled is evaluated per
// call so the /fuzzy toggle takes effect immediately.
func NewEditFile(files *file.Service, fuzzyEnabled func() bool) Tool {
	return NewBaseAdapter(
		"edit_file",
		"Replaces a snippet in an existing file with new content",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"path": {
					Type:        "string",
					Description: "Path to the file (relative to workspace root)",
				},
				"original_snippet": {
					Type:        "string",
					Description: "Exact text to find and replace",
				},
				"new_snippet": {
					Type:        "string",
					Description: "Replacement text",
				},
			},
			Required: []string{"path", "original_snippet", "new_snippet"},
		},
		func(ctx context.Context, req EditFileRequest) (EditFileResponse, error) {
			result, err := files.Edit(req.Path, req.OriginalSnippet, req.NewSnippet, fuzzyEnabled())
			if err != nil {
				return EditFileResponse{}, err
			}
			return EditFileResponse{
				Path:         result.RelativePath,
				Diff:         result.Diff,
				AddedLines:   result.AddedLines,
				RemovedLines: result.RemovedLines,
			}, nil
		},
	)
}

// NewRunBash creates a run_bash adapter
func NewRunBash(runner *shell.Runner) Tool {
	return newShellAdapter("run_bash", "Executes a bash command in the working directory", runner.RunBash)
}

// NewRunPowerShell creates a run_powershell adapter
func NewRunPowerShell(runner *shell.Runner) Tool {
	return newShellAdapter("run_powershell", "Executes a PowerShell command in the working directory", runner.RunPowerShell)
}

func newShellAdapter(name, description string, run func(context.Context, string) (*shell.Result, error)) Tool {
	return NewBaseAdapter(
		name,
		description,
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"command": {
					Type:        "string",
					Description: "The command to execute",
				},
			},
			Required: []string{"command"},
		},
		func(ctx context.Context, req ShellRequest) (ShellResponse, error) {
			result, err := run(ctx, req.Command)
			if err != nil {
				// A timed-out command still produced useful partial output;
				// surface it to the model instead of discarding it.
				if errors.Is(err, shell.ErrTimeout) && result != nil {
					return ShellResponse{
						Stdout:    result.Stdout,
						Stderr:    fmt.Sprintf("%s\n[command timed out]", result.Stderr),
						ExitCode:  result.ExitCode,
						Truncated: result.Truncated,
					}, nil
				}
				return ShellResponse{}, err
			}
			return ShellResponse{
				Stdout:    result.Stdout,
				Stderr:    result.Stderr,
				ExitCode:  result.ExitCode,
				Truncated: result.Truncated,
			}, nil
		},
	)
}
