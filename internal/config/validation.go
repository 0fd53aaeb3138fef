package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Models.DefaultModel == "" {
		errs = append(errs, "models.default_model must not be empty")
	}
	if c.Models.ReasonerModel == "" {
		errs = append(errs, "models.reasoner_model must not be empty")
	}
	for model, limit := range c.Models.ContextLimits {
		if limit < 1 {
			errs = append(errs, fmt.Sprintf("models.context_limits[%s] must be >= 1", model))
		}
	}

	if c.Conversation.MaxReasoningSteps < 1 {
		errs = append(errs, "conversation.max_reasoning_steps must be >= 1")
	}
	if c.Conversation.WarningThreshold <= 0 || c.Conversation.WarningThreshold > 1 {
		errs = append(errs, "conversation.context_warning_threshold must be in (0, 1]")
	}
	if c.Conversation.CriticalThreshold <= 0 || c.Conversation.CriticalThreshold > 1 {
		errs = append(errs, "conversation.aggressive_truncation_threshold must be in (0, 1]")
	}
	if c.Conversation.WarningThreshold > c.Conversation.CriticalThreshold {
		errs = append(errs, "conversation.context_warning_threshold must be <= aggressive_truncation_threshold")
	}

	if c.Fuzzy.MinFileScore < 0 || c.Fuzzy.MinFileScore > 100 {
		errs = append(errs, "fuzzy_matching.min_fuzzy_score must be in [0, 100]")
	}
	if c.Fuzzy.MinEditScore < 0 || c.Fuzzy.MinEditScore > 100 {
		errs = append(errs, "fuzzy_matching.min_edit_score must be in [0, 100]")
	}

	if c.Files.MaxCreateSize < 1 {
		errs = append(errs, "file_limits.max_file_content_size_create must be >= 1")
	}
	if c.Files.MaxMultiReadSize < 1 {
		errs = append(errs, "file_limits.max_multiple_read_size must be >= 1")
	}
	if c.Files.MaxFilesInAddDir < 1 {
		errs = append(errs, "file_limits.max_files_in_add_dir must be >= 1")
	}
	if c.Files.TreeMaxDepth < 1 {
		errs = append(errs, "file_limits.tree_max_depth must be >= 1")
	}
	if c.Files.TreeMaxEntries < 1 {
		errs = append(errs, "file_limits.tree_max_entries must be >= 1")
	}
	if c.Files.BinarySampleSize < 1 {
		errs = append(errs, "file_limits.binary_sample_size must be >= 1")
	}

	if c.Shell.TimeoutSeconds < 1 {
		errs = append(errs, "shell.timeout_seconds must be >= 1")
	}
	if c.Shell.MaxOutputSize < 1 {
		errs = append(errs, "shell.max_output_size must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
