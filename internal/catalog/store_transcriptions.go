package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveTranscription inserts one transcription artifact, replacing any prior
// artifact for the same (show, format) pair. Re-transcribing must never
// produce duplicate rows.
func (s *Store) SaveTranscription(ctx context.Context, tr *Transcription) (*Transcription, error) {
	if tr == nil {
		return nil, errors.New("transcription is nil")
	}
	if tr.ShowID == 0 {
		return nil, errors.New("transcription show id is required")
	}
	if tr.Format == "" {
		return nil, errors.New("transcription format is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO transcriptions (show_id, path, format, word_count, speakers, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (show_id, format) DO UPDATE SET
             path = excluded.path,
             word_count = excluded.word_count,
             speakers = excluded.speakers,
             updated_at = excluded.updated_at`,
		tr.ShowID,
		tr.Path,
		tr.Format,
		tr.WordCount,
		tr.Speakers,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("save transcription: %w", err)
	}

	return s.TranscriptionForFormat(ctx, tr.ShowID, tr.Format)
}

// TranscriptionForFormat fetches the artifact for one (show, format) pair.
func (s *Store) TranscriptionForFormat(ctx context.Context, showID int64, format string) (*Transcription, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+transcriptionColumns+` FROM transcriptions WHERE show_id = ? AND format = ?`,
		showID, format,
	)
	tr, err := scanTranscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	return tr, nil
}

// TranscriptionsForShow returns all artifacts recorded for a show.
func (s *Store) TranscriptionsForShow(ctx context.Context, showID int64) ([]*Transcription, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+transcriptionColumns+` FROM transcriptions WHERE show_id = ? ORDER BY format`,
		showID,
	)
	if err != nil {
		return nil, fmt.Errorf("transcriptions for show: %w", err)
	}
	defer rows.Close()

	var transcriptions []*Transcription
	for rows.Next() {
		tr, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		transcriptions = append(transcriptions, tr)
	}
	return transcriptions, rows.Err()
}
