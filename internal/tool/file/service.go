package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arlo-cli/arlo/internal/config"
	"github.com/pmezard/go-difflib/difflib"
)

// fileOps defines the minimal filesystem operations the service needs.
type fileOps interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}

// binaryDetector reports whether content looks binary.
type binaryDetector interface {
	IsBinaryContent(content []byte) bool
}

// pathResolver defines workspace path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Rel(path string) (string, error)
}

// Service handles file reading, creation, and snippet editing inside the
// workspace sandbox.
type Service struct {
	fileOps        fileOps
	binaryDetector binaryDetector
	pathResolver   pathResolver
	config         *config.Config
}

// NewService creates a new file Service with injected dependencies.
func NewService(ops fileOps, detector binaryDetector, resolver pathResolver, cfg *config.Config) *Service {
	if ops == nil {
		panic("fileOps is required")
	}
	if detector == nil {
		panic("binaryDetector is required")
	}
	if resolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &Service{
		fileOps:        ops,
		binaryDetector: detector,
		pathResolver:   resolver,
		config:         cfg,
	}
}

type ReadResult struct {
	AbsolutePath string
	RelativePath string
	Size         int64
	Content      string
}

type CreateResult struct {
	AbsolutePath string
	RelativePath string
	BytesWritten int
}

type EditResult struct {
	AbsolutePath string
	RelativePath string
	Diff         string
	AddedLines   int
	RemovedLines int
}

// MaxReadBytes returns the byte ceiling for a single file read given a
// model's context window: 60% of the window at roughly four characters
// per token, so one read can never blow the conversation budget on its own.
func MaxReadBytes(contextWindow int) int64 {
	return int64(contextWindow) * 6 / 10 * 4
}

// Read loads a text file from the workspace. Binary files, directories, and
// files larger than maxBytes are rejected. maxBytes <= 0 disables the ceiling.
func (s *Service) Read(path string, maxBytes int64) (*ReadResult, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	abs, err := s.pathResolver.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := s.pathResolver.Rel(abs)
	if err != nil {
		return nil, err
	}

	info, err := s.fileOps.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, abs)
		}
		return nil, &StatError{Path: abs, Cause: err}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, abs)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, &TooLargeError{Path: abs, Size: info.Size(), Limit: maxBytes}
	}

	data, err := s.fileOps.ReadFile(abs)
	if err != nil {
		return nil, &ReadError{Path: abs, Cause: err}
	}

	if s.binaryDetector.IsBinaryContent(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, abs)
	}

	return &ReadResult{
		AbsolutePath: abs,
		RelativePath: rel,
		Size:         info.Size(),
		Content:      string(data),
	}, nil
}

// Create writes a new file in the workspace. The target must not already
// exist; parent directories are created as needed and the write is atomic.
func (s *Service) Create(path, content string) (*CreateResult, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	abs, err := s.pathResolver.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := s.pathResolver.Rel(abs)
	if err != nil {
		return nil, err
	}

	if _, err := s.fileOps.Stat(abs); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, abs)
	} else if !os.IsNotExist(err) {
		return nil, &StatError{Path: abs, Cause: err}
	}

	contentBytes := []byte(content)
	if s.binaryDetector.IsBinaryContent(contentBytes) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, abs)
	}
	if maxSize := s.config.Files.MaxCreateSize; int64(len(contentBytes)) > maxSize {
		return nil, &TooLargeError{Path: abs, Size: int64(len(contentBytes)), Limit: maxSize}
	}

	if err := s.fileOps.EnsureDirs(filepath.Dir(abs)); err != nil {
		return nil, &WriteError{Path: abs, Cause: err}
	}
	if err := s.fileOps.WriteFileAtomic(abs, contentBytes, 0o644); err != nil {
		return nil, &WriteError{Path: abs, Cause: err}
	}

	return &CreateResult{
		AbsolutePath: abs,
		RelativePath: rel,
		BytesWritten: len(contentBytes),
	}, nil
}

// Edit replaces a snippet inside an existing file, exact match first and
// fuzzy window matching second when fuzzyEnabled. The file is rewritten
// atomically with its original permissions and line endings preserved.
func (s *Service) Edit(path, originalSnippet, newSnippet string, fuzzyEnabled bool) (*EditResult, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	abs, err := s.pathResolver.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := s.pathResolver.Rel(abs)
	if err != nil {
		return nil, err
	}

	info, err := s.fileOps.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, abs)
		}
		return nil, &StatError{Path: abs, Cause: err}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, abs)
	}

	data, err := s.fileOps.ReadFile(abs)
	if err != nil {
		return nil, &ReadError{Path: abs, Cause: err}
	}
	if s.binaryDetector.IsBinaryContent(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, abs)
	}

	rawContent := string(data)
	hasCRLF := strings.Contains(rawContent, "\r\n")

	// Normalize to \n for consistent matching
	oldContent := strings.ReplaceAll(rawContent, "\r\n", "\n")
	original := strings.ReplaceAll(originalSnippet, "\r\n", "\n")
	replacement := strings.ReplaceAll(newSnippet, "\r\n", "\n")

	newContent, err := Patch(rel, oldContent, original, replacement, s.config.Fuzzy.MinEditScore, fuzzyEnabled)
	if err != nil {
		return nil, err
	}

	finalContent := newContent
	if hasCRLF {
		finalContent = strings.ReplaceAll(newContent, "\n", "\r\n")
	}

	if err := s.fileOps.WriteFileAtomic(abs, []byte(finalContent), info.Mode()); err != nil {
		return nil, &WriteError{Path: abs, Cause: err}
	}

	diff, added, removed := computeUnifiedDiff(filepath.Base(abs), oldContent, newContent)

	return &EditResult{
		AbsolutePath: abs,
		RelativePath: rel,
		Diff:         diff,
		AddedLines:   added,
		RemovedLines: removed,
	}, nil
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
