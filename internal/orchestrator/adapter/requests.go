package adapter

import "errors"

// Request and response types for the built-in tools. Field names follow the
// JSON argument names the model is told about in the tool schemas.

type ReadFileRequest struct {
	Path string `mapstructure:"path" json:"path"`
}

func (r ReadFileRequest) Validate() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

type ReadFileResponse struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Content string `json:"content"`
}

type ReadMultipleFilesRequest struct {
	Paths []string `mapstructure:"paths" json:"paths"`
}

func (r ReadMultipleFilesRequest) Validate() error {
	if len(r.Paths) == 0 {
		return errors.New("paths is required")
	}
	return nil
}

// ReadEntry is one file's outcome in a multi-file read. A failed read
// carries its error inline so the remaining files still come through.
type ReadEntry struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ReadMultipleFilesResponse struct {
	Files     []ReadEntry `json:"files"`
	Truncated bool        `json:"truncated,omitempty"`
}

type CreateFileRequest struct {
	Path    string `mapstructure:"path" json:"path"`
	Content string `mapstructure:"content" json:"content"`
}

func (r CreateFileRequest) Validate() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

type CreateFileResponse struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
}

type FileSpec struct {
	Path    string `mapstructure:"path" json:"path"`
	Content string `mapstructure:"content" json:"content"`
}

type CreateMultipleFilesRequest struct {
	Files []FileSpec `mapstructure:"files" json:"files"`
}

func (r CreateMultipleFilesRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New("files is required")
	}
	return nil
}

// CreateEntry is one file's outcome in a multi-file create. Files are
// processed independently so one failure does not abort the batch.
type CreateEntry struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written,omitempty"`
	Error        string `json:"error,omitempty"`
}

type CreateMultipleFilesResponse struct {
	Files []CreateEntry `json:"files"`
}

type EditFileRequest struct {
	Path            string `mapstructure:"path" json:"path"`
	OriginalSnippet string `mapstructure:"original_snippet" json:"original_snippet"`
	NewSnippet      string `mapstructure:"new_snippet" json:"new_snippet"`
}

func (r EditFileRequest) Validate() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if r.OriginalSnippet == "" {
		return errors.New("original_snippet is required")
	}
	return nil
}

type EditFileResponse struct {
	Path         string `json:"path"`
	Diff         string `json:"diff"`
	AddedLines   int    `json:"added_lines"`
	RemovedLines int    `json:"removed_lines"`
}

type ShellRequest struct {
	Command string `mapstructure:"command" json:"command"`
}

func (r ShellRequest) Validate() error {
	if r.Command == "" {
		return errors.New("command is required")
	}
	return nil
}

type ShellResponse struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Truncated bool   `json:"truncated,omitempty"`
}
