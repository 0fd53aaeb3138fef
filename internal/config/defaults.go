package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Models       ModelsConfig       `json:"models"`
	Conversation ConversationConfig `json:"conversation"`
	Fuzzy        FuzzyConfig        `json:"fuzzy_matching"`
	Files        FilesConfig        `json:"file_limits"`
	Shell        ShellConfig        `json:"shell"`

	// Excluded* filter directory walks (tree summaries, fuzzy file
	// resolution, /folder). Names match exactly; extensions include the dot.
	ExcludedFiles      []string `json:"excluded_files"`
	ExcludedExtensions []string `json:"excluded_extensions"`
}

type ModelsConfig struct {
	DefaultModel string `json:"default_model"` // Default: "moonshotai/kimi-k2-instruct"

	// ReasonerModel is the /reasoner toggle target for tasks that need
	// longer chains of thought.
	ReasonerModel string `json:"reasoner_model"` // Default: "deepseek-r1-distill-llama-70b"

	// ContextLimits maps model identifiers to their maximum context tokens.
	// Models not listed fall back to DefaultContextWindow.
	ContextLimits map[string]int `json:"context_limits"`
}

type ConversationConfig struct {
	MaxReasoningSteps int `json:"max_reasoning_steps"` // Default: 10

	// WarningThreshold and CriticalThreshold are fractions of the model's
	// context window (0..1). At warning the UI nags; at critical the
	// session truncates before the next provider call.
	WarningThreshold  float64 `json:"context_warning_threshold"`       // Default: 0.7
	CriticalThreshold float64 `json:"aggressive_truncation_threshold"` // Default: 0.85
}

type FuzzyConfig struct {
	// Enabled gates the fuzzy fallback in edit_file. Exact snippet matches
	// never require it. Off by default: fuzzy writes are opt-in.
	Enabled bool `json:"enabled_by_default"`

	MinFileScore int `json:"min_fuzzy_score"` // Default: 80 (file resolution)
	MinEditScore int `json:"min_edit_score"`  // Default: 85 (snippet patching)
}

type FilesConfig struct {
	MaxCreateSize    int64 `json:"max_file_content_size_create"` // Default: 5MB
	MaxMultiReadSize int   `json:"max_multiple_read_size"`       // Default: 100000 chars
	MaxFilesInAddDir int   `json:"max_files_in_add_dir"`         // Default: 1000
	TreeMaxDepth     int   `json:"tree_max_depth"`               // Default: 3
	TreeMaxEntries   int   `json:"tree_max_entries"`             // Default: 100
	BinarySampleSize int   `json:"binary_sample_size"`           // Default: 8192
}

type ShellConfig struct {
	TimeoutSeconds  int      `json:"timeout_seconds"` // Default: 30
	RequireConfirm  bool     `json:"require_confirmation"`
	MaxOutputSize   int      `json:"max_output_size"` // Default: 10MB
	AllowedCommands []string `json:"allowed_commands"`
	DeniedCommands  []string `json:"denied_commands"`
}

// DefaultContextWindow is the ceiling assumed for models absent from the
// registry. Conservative for modern hosted models.
const DefaultContextWindow = 128000

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			DefaultModel:  "moonshotai/kimi-k2-instruct",
			ReasonerModel: "deepseek-r1-distill-llama-70b",
			ContextLimits: map[string]int{
				"moonshotai/kimi-k2-instruct":   131072,
				"deepseek-r1-distill-llama-70b": 131072,
				"llama-3.3-70b-versatile":       131072,
				"llama-3.1-8b-instant":          131072,
				"mixtral-8x7b-32768":            32768,
				"gemini-2.0-flash":              1048576,
			},
		},
		Conversation: ConversationConfig{
			MaxReasoningSteps: 10,
			WarningThreshold:  0.7,
			CriticalThreshold: 0.85,
		},
		Fuzzy: FuzzyConfig{
			Enabled:      false,
			MinFileScore: 80,
			MinEditScore: 85,
		},
		Files: FilesConfig{
			MaxCreateSize:    5 * 1024 * 1024,
			MaxMultiReadSize: 100_000,
			MaxFilesInAddDir: 1000,
			TreeMaxDepth:     3,
			TreeMaxEntries:   100,
			BinarySampleSize: 8192,
		},
		Shell: ShellConfig{
			TimeoutSeconds: 30,
			RequireConfirm: true,
			MaxOutputSize:  10 * 1024 * 1024,
		},
		ExcludedFiles: []string{
			".git", ".svn", ".hg", "node_modules", "__pycache__",
			".venv", "venv", "dist", "build", "target", ".cache",
			".next", ".DS_Store", "Thumbs.db", "vendor", "coverage",
		},
		ExcludedExtensions: []string{
			".exe", ".dll", ".so", ".dylib", ".bin", ".o", ".a",
			".zip", ".tar", ".gz", ".jpg", ".jpeg", ".png", ".gif",
			".pdf", ".ico", ".lock", ".pyc", ".wasm",
		},
	}
}

// ContextWindow returns the maximum context tokens for a model, falling
// back to DefaultContextWindow for unknown identifiers.
func (c *Config) ContextWindow(model string) int {
	if limit, ok := c.Models.ContextLimits[model]; ok {
		return limit
	}
	return DefaultContextWindow
}

// IsExcludedName reports whether a file or directory name is excluded
// from directory walks.
func (c *Config) IsExcludedName(name string) bool {
	for _, excluded := range c.ExcludedFiles {
		if name == excluded {
			return true
		}
	}
	return false
}

// IsExcludedExtension reports whether a file extension (including the
// leading dot, lowercase) is excluded from directory walks.
func (c *Config) IsExcludedExtension(ext string) bool {
	for _, excluded := range c.ExcludedExtensions {
		if ext == excluded {
			return true
		}
	}
	return false
}
