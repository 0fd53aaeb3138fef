package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arlo-cli/arlo/internal/config"
	provider "github.com/arlo-cli/arlo/internal/provider/model"
	"github.com/arlo-cli/arlo/internal/tool/file"
	"github.com/arlo-cli/arlo/internal/tool/pathutil"
	"github.com/arlo-cli/arlo/internal/tool/shell"
)

type echoRequest struct {
	Text string `mapstructure:"text" json:"text"`
}

func (r echoRequest) Validate() error {
	if r.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

type echoResponse struct {
	Text string `json:"text"`
}

func newEchoAdapter() Tool {
	return NewBaseAdapter(
		"echo",
		"Echoes text back",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"text": {Type: "string"},
			},
			Required: []string{"text"},
		},
		func(ctx context.Context, req echoRequest) (echoResponse, error) {
			return echoResponse{Text: req.Text}, nil
		},
	)
}

func TestBaseAdapterExecute(t *testing.T) {
	tool := newEchoAdapter()

	result, err := tool.Execute(context.Background(), map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp echoResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Text != "hello" {
		t.Errorf("Text = %q, want %q", resp.Text, "hello")
	}
}

func TestBaseAdapterValidation(t *testing.T) {
	tool := newEchoAdapter()

	_, err := tool.Execute(context.Background(), map[string]any{})
	if err == nil {
		t.Fatal("Execute() with missing required field should fail")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("error = %v, want validation failure", err)
	}
}

func TestBaseAdapterBadArguments(t *testing.T) {
	tool := newEchoAdapter()

	_, err := tool.Execute(context.Background(), map[string]any{"text": []int{1, 2}})
	if err == nil {
		t.Fatal("Execute() with mistyped argument should fail")
	}
	if !strings.Contains(err.Error(), "invalid arguments") {
		t.Errorf("error = %v, want invalid arguments", err)
	}
}

func TestBaseAdapterDefinition(t *testing.T) {
	tool := newEchoAdapter()

	if tool.Name() != "echo" {
		t.Errorf("Name() = %q", tool.Name())
	}
	def := tool.Definition()
	if def.Name != "echo" || def.Parameters == nil {
		t.Errorf("Definition() = %+v", def)
	}
	if _, ok := def.Parameters.Properties["text"]; !ok {
		t.Error("Definition() missing text property")
	}
}

// fakeFS backs a file.Service with an in-memory tree for adapter tests.
type fakeFS struct {
	files map[string][]byte
}

func (f *fakeFS) Stat(path string) (os.FileInfo, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return fakeInfo{name: filepath.Base(path), size: int64(len(content))}, nil
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return content, nil
}

func (f *fakeFS) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	f.files[path] = content
	return nil
}

func (f *fakeFS) EnsureDirs(path string) error { return nil }

type fakeInfo struct {
	name string
	size int64
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() os.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

type textDetector struct{}

func (textDetector) IsBinaryContent(content []byte) bool { return false }

func newTestFileService(files map[string][]byte) *file.Service {
	return file.NewService(
		&fakeFS{files: files},
		textDetector{},
		pathutil.NewResolver("/ws"),
		config.DefaultConfig(),
	)
}

func TestReadFileAdapter(t *testing.T) {
	svc := newTestFileService(map[string][]byte{
		"/ws/main.go": []byte("package main\n"),
	})
	tool := NewReadFile(svc, func() int64 { return 1 << 20 })

	result, err := tool.Execute(context.Background(), map[string]any{"path": "main.go"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp ReadFileResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Path != "main.go" {
		t.Errorf("Path = %q, want main.go", resp.Path)
	}
	if resp.Content != "package main\n" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestReadFileAdapterMissing(t *testing.T) {
	svc := newTestFileService(map[string][]byte{})
	tool := NewReadFile(svc, func() int64 { return 1 << 20 })

	_, err := tool.Execute(context.Background(), map[string]any{"path": "nope.go"})
	if !errors.Is(err, file.ErrFileMissing) {
		t.Errorf("error = %v, want ErrFileMissing", err)
	}
}

func TestReadMultipleFilesAdapterPartialFailure(t *testing.T) {
	svc := newTestFileService(map[string][]byte{
		"/ws/a.go": []byte("alpha"),
		"/ws/c.go": []byte("gamma"),
	})
	tool := NewReadMultipleFiles(svc, config.DefaultConfig(), func() int64 { return 1 << 20 })

	result, err := tool.Execute(context.Background(), map[string]any{
		"paths": []string{"a.go", "missing.go", "c.go"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp ReadMultipleFilesResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(resp.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(resp.Files))
	}
	if resp.Files[0].Content != "alpha" {
		t.Errorf("Files[0].Content = %q", resp.Files[0].Content)
	}
	if resp.Files[1].Error == "" {
		t.Error("Files[1] should carry the read error inline")
	}
	if resp.Files[2].Content != "gamma" {
		t.Errorf("Files[2].Content = %q", resp.Files[2].Content)
	}
}

func TestReadMultipleFilesAdapterCap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Files.MaxMultiReadSize = 8

	svc := newTestFileService(map[string][]byte{
		"/ws/a.txt": []byte("123456"),
		"/ws/b.txt": []byte("789012"),
	})
	tool := NewReadMultipleFiles(svc, cfg, func() int64 { return 1 << 20 })

	result, err := tool.Execute(context.Background(), map[string]any{
		"paths": []string{"a.txt", "b.txt"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp ReadMultipleFilesResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !resp.Truncated {
		t.Error("Truncated should be true when the cap is hit")
	}
	if got := resp.Files[1].Content; got != "78" {
		t.Errorf("Files[1].Content = %q, want %q", got, "78")
	}
}

func TestCreateFileAdapter(t *testing.T) {
	fs := map[string][]byte{}
	svc := newTestFileService(fs)
	tool := NewCreateFile(svc)

	result, err := tool.Execute(context.Background(), map[string]any{
		"path":    "pkg/new.go",
		"content": "package pkg\n",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp CreateFileResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.BytesWritten != len("package pkg\n") {
		t.Errorf("BytesWritten = %d", resp.BytesWritten)
	}
	if string(fs["/ws/pkg/new.go"]) != "package pkg\n" {
		t.Error("file was not written to the fake filesystem")
	}
}

func TestCreateMultipleFilesAdapterIndependent(t *testing.T) {
	fs := map[string][]byte{
		"/ws/exists.go": []byte("old"),
	}
	svc := newTestFileService(fs)
	tool := NewCreateMultipleFiles(svc)

	result, err := tool.Execute(context.Background(), map[string]any{
		"files": []map[string]any{
			{"path": "exists.go", "content": "new"},
			{"path": "fresh.go", "content": "package fresh\n"},
		},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp CreateMultipleFilesResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Files[0].Error == "" {
		t.Error("creating an existing file should report an inline error")
	}
	if resp.Files[1].Error != "" {
		t.Errorf("Files[1].Error = %q, want success", resp.Files[1].Error)
	}
	if string(fs["/ws/exists.go"]) != "old" {
		t.Error("existing file must not be overwritten")
	}
}

func TestEditFileAdapterFuzzyToggle(t *testing.T) {
	fs := map[string][]byte{
		"/ws/app.py": []byte("def main():\n    print(velue)\n"),
	}
	svc := newTestFileService(fs)

	fuzzy := false
	tool := NewEditFile(svc, func() bool { return fuzzy })

	args := map[string]any{
		"path":             "app.py",
		"original_snippet": "    print(value)",
		"new_snippet":      "    print(value + 1)",
	}

	if _, err := tool.Execute(context.Background(), args); err == nil {
		t.Fatal("edit with fuzzy disabled and no exact match should fail")
	}

	fuzzy = true
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp EditFileResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.AddedLines != 1 || resp.RemovedLines != 1 {
		t.Errorf("diff lines = +%d/-%d, want +1/-1", resp.AddedLines, resp.RemovedLines)
	}
	if !strings.Contains(string(fs["/ws/app.py"]), "print(value + 1)") {
		t.Error("fuzzy edit did not apply")
	}
}

type stubExecutor struct {
	result *shell.Result
	err    error
}

func (s stubExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*shell.Result, error) {
	return s.result, s.err
}

func TestRunBashAdapter(t *testing.T) {
	runner := shell.NewRunner(stubExecutor{
		result: &shell.Result{Stdout: "ok\n", ExitCode: 0},
	}, config.DefaultConfig(), "/ws")
	tool := NewRunBash(runner)

	result, err := tool.Execute(context.Background(), map[string]any{"command": "echo ok"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp ShellResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Stdout != "ok\n" || resp.ExitCode != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRunBashAdapterTimeoutKeepsPartialOutput(t *testing.T) {
	runner := shell.NewRunner(stubExecutor{
		result: &shell.Result{Stdout: "partial", ExitCode: -1},
		err:    shell.ErrTimeout,
	}, config.DefaultConfig(), "/ws")
	tool := NewRunBash(runner)

	result, err := tool.Execute(context.Background(), map[string]any{"command": "sleep 100"})
	if err != nil {
		t.Fatalf("timeout should surface as output, got error %v", err)
	}

	var resp ShellResponse
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Stdout != "partial" {
		t.Errorf("Stdout = %q, want partial output preserved", resp.Stdout)
	}
	if !strings.Contains(resp.Stderr, "timed out") {
		t.Errorf("Stderr = %q, want timeout note", resp.Stderr)
	}
}

func TestShellAdapterEmptyCommand(t *testing.T) {
	runner := shell.NewRunner(stubExecutor{result: &shell.Result{}}, config.DefaultConfig(), "/ws")
	tool := NewRunPowerShell(runner)

	_, err := tool.Execute(context.Background(), map[string]any{"command": ""})
	if err == nil {
		t.Fatal("empty command should fail validation")
	}
}
