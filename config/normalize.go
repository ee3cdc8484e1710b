package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	if err := c.normalizeWhisper(); err != nil {
		return err
	}
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	c.Summarizer.Engine = strings.ToLower(strings.TrimSpace(c.Summarizer.Engine))
	c.Summarizer.LLMHost = strings.TrimSpace(c.Summarizer.LLMHost)
	c.Summarizer.LLMModel = strings.TrimSpace(c.Summarizer.LLMModel)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	var err error
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = defaultDataDir
	}
	if c.Storage.DataDir, err = expandPath(c.Storage.DataDir); err != nil {
		return fmt.Errorf("storage.data_dir: %w", err)
	}

	derived := []struct {
		name  string
		field *string
		def   string
	}{
		{"storage.upload_dir", &c.Storage.UploadDir, "uploads"},
		{"storage.transcript_dir", &c.Storage.TranscriptDir, "transcripts"},
		{"storage.meeting_db", &c.Storage.MeetingDB, "meetings.db"},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.field) == "" {
			*d.field = filepath.Join(c.Storage.DataDir, d.def)
		}
		if *d.field, err = expandPath(*d.field); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return nil
}

func (c *Config) normalizeWhisper() error {
	var err error
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	c.Whisper.FFmpeg = strings.TrimSpace(c.Whisper.FFmpeg)
	if c.Whisper.ModelDir, err = expandPath(strings.TrimSpace(c.Whisper.ModelDir)); err != nil {
		return fmt.Errorf("whisper.model_dir: %w", err)
	}
	if c.Whisper.VADModel, err = expandPath(strings.TrimSpace(c.Whisper.VADModel)); err != nil {
		return fmt.Errorf("whisper.vad_model: %w", err)
	}
	return nil
}
