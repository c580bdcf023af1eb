package config

import (
	"errors"
	"fmt"
)

var knownTranscriptionFormats = map[string]struct{}{
	"txt":  {},
	"json": {},
	"srt":  {},
}

// Validate ensures the configuration is usable. Validation failures are
// fatal at startup; steady-state operation never re-validates.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	if c.Paths.TranscriptDir == "" {
		return errors.New("paths.transcript_dir must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.MaxPerRun < 0 {
		return errors.New("fetch.max_per_run must not be negative")
	}
	if c.Fetch.CommandTimeout <= 0 {
		return errors.New("fetch.command_timeout must be positive")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if len(c.Transcription.Formats) == 0 {
		return errors.New("transcription.formats must not be empty")
	}
	for _, format := range c.Transcription.Formats {
		if _, ok := knownTranscriptionFormats[format]; !ok {
			return fmt.Errorf("transcription.formats: unsupported format %q", format)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RefreshInterval < 0 {
		return errors.New("workflow.refresh_interval must not be negative")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ItemPause < 0 {
		return errors.New("workflow.item_pause must not be negative")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	return nil
}
