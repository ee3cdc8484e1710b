package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/poiesic/minutes/core"
	"github.com/poiesic/minutes/storage"
)

const meetingColumns = "id, title, organizer, status, audio_file_path, transcription_id, summary, created_at, updated_at"

// Store manages meeting records backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ storage.MeetingRepository = (*Store)(nil)

// Open initializes or connects to the meeting database and applies the schema.
// The parent directory is created if missing.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure meeting db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, logger: logger.With("component", "meeting-store")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	store.logger.Debug("meeting store opened", "path", path)
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateMeeting inserts a meeting record.
func (s *Store) CreateMeeting(ctx context.Context, m *core.Meeting) error {
	if m == nil {
		return fmt.Errorf("%w: meeting is nil", storage.ErrInvalidRecord)
	}
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return fmt.Errorf("%w: meeting title is required", storage.ErrInvalidRecord)
	}
	if m.ID == "" {
		m.ID = core.NewID()
	}
	if m.Status == "" {
		m.Status = core.MeetingStatusDraft
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO meetings (`+meetingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.Title,
		nullableString(m.Organizer),
		string(m.Status),
		nullableString(m.AudioPath),
		nullableString(m.TranscriptionID),
		nullableString(m.Summary),
		m.CreatedAt.Format(time.RFC3339Nano),
		m.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

// GetMeeting fetches a meeting by identifier.
func (s *Store) GetMeeting(ctx context.Context, id string) (*core.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

// ListMeetings returns meetings newest first, optionally restricted to one status.
func (s *Store) ListMeetings(ctx context.Context, status core.MeetingStatus) ([]*core.Meeting, error) {
	var (
		rows *sql.Rows
		err  error
	)
	baseQuery := `SELECT ` + meetingColumns + ` FROM meetings`
	orderClause := ` ORDER BY created_at DESC, id`
	if status == "" {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status = ?`+orderClause, string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*core.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// UpdateMeetingRecording writes the recording fields that are set in update.
func (s *Store) UpdateMeetingRecording(ctx context.Context, id string, update core.MeetingUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if update.AudioPath != nil {
		sets = append(sets, "audio_file_path = ?")
		args = append(args, nullableString(*update.AudioPath))
	}
	if update.TranscriptionID != nil {
		sets = append(sets, "transcription_id = ?")
		args = append(args, nullableString(*update.TranscriptionID))
	}
	if update.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, nullableString(*update.Summary))
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano), id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE meetings SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanMeeting(scanner interface{ Scan(dest ...any) error }) (*core.Meeting, error) {
	var (
		id              string
		title           string
		organizer       sql.NullString
		status          string
		audioPath       sql.NullString
		transcriptionID sql.NullString
		summary         sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&organizer,
		&status,
		&audioPath,
		&transcriptionID,
		&summary,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	m := &core.Meeting{
		ID:              id,
		Title:           title,
		Organizer:       organizer.String,
		Status:          core.MeetingStatus(status),
		AudioPath:       audioPath.String,
		TranscriptionID: transcriptionID.String,
		Summary:         summary.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		m.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		m.UpdatedAt = updated
	}
	return m, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
