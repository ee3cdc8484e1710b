package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Summarizer.Sentences < 1 {
		return errors.New("summarizer.sentences must be at least 1")
	}
	if c.Summarizer.TimeoutSeconds < 0 {
		return errors.New("summarizer.timeout_seconds must not be negative")
	}
	if c.Whisper.MaxCachedModels < 0 {
		return errors.New("whisper.max_cached_models must not be negative")
	}
	if c.Whisper.FFmpeg == "" {
		return errors.New("whisper.ffmpeg must be set")
	}
	if err := c.AI().Validate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.MaxBodyMiB < 1 {
		return errors.New("server.max_body_mib must be at least 1")
	}
	if c.Server.ShutdownTimeoutSeconds < 1 {
		return errors.New("server.shutdown_timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir must be set")
	}
	if c.Storage.MeetingDB == c.Storage.TranscriptDir {
		return errors.New("storage.meeting_db and storage.transcript_dir must differ")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	p := c.Pipeline
	if p.ComputeWorkers < 1 {
		return errors.New("pipeline.compute_workers must be at least 1")
	}
	if p.MaxRuns < 1 {
		return errors.New("pipeline.max_runs must be at least 1")
	}
	if p.TranscribeTimeoutSeconds < 0 || p.SummarizeTimeoutSeconds < 0 {
		return errors.New("pipeline timeouts must not be negative")
	}
	if p.PersistAttempts < 1 {
		return errors.New("pipeline.persist_attempts must be at least 1")
	}
	if p.MaxUploadMiB < 0 {
		return errors.New("pipeline.max_upload_mib must not be negative")
	}
	if p.MaxRecordingMiB < 1 {
		return errors.New("pipeline.max_recording_mib must be at least 1")
	}
	if p.MaxUploadMiB > c.Server.MaxBodyMiB || p.MaxRecordingMiB > c.Server.MaxBodyMiB {
		return fmt.Errorf("upload caps must not exceed server.max_body_mib (%d)", c.Server.MaxBodyMiB)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !slices.Contains([]string{"text", "json"}, c.Logging.Format) {
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}
