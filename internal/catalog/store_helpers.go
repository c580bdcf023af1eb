package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const showColumns = "id, pid, title, description, episode, broadcast_date, duration, download_path, status, error_message, metadata, created_at, updated_at"

func scanShow(scanner interface{ Scan(dest ...any) error }) (*Show, error) {
	var (
		id           int64
		pid          string
		title        string
		description  sql.NullString
		episode      sql.NullString
		broadcast    sql.NullString
		duration     sql.NullInt64
		downloadPath sql.NullString
		statusStr    string
		errorMessage sql.NullString
		metadataRaw  sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&pid,
		&title,
		&description,
		&episode,
		&broadcast,
		&duration,
		&downloadPath,
		&statusStr,
		&errorMessage,
		&metadataRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	show := &Show{
		ID:            id,
		PID:           pid,
		Title:         title,
		Description:   description.String,
		Episode:       episode.String,
		BroadcastDate: broadcast.String,
		Duration:      int(duration.Int64),
		DownloadPath:  downloadPath.String,
		Status:        Status(statusStr),
		ErrorMessage:  errorMessage.String,
	}
	if metadataRaw.Valid && metadataRaw.String != "" {
		if err := json.Unmarshal([]byte(metadataRaw.String), &show.Metadata); err != nil {
			return nil, err
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		show.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		show.UpdatedAt = updated
	}
	return show, nil
}

const transcriptionColumns = "id, show_id, path, format, word_count, speakers, created_at, updated_at"

func scanTranscription(scanner interface{ Scan(dest ...any) error }) (*Transcription, error) {
	var (
		id         int64
		showID     int64
		path       string
		format     string
		wordCount  sql.NullInt64
		speakers   sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(&id, &showID, &path, &format, &wordCount, &speakers, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	tr := &Transcription{
		ID:        id,
		ShowID:    showID,
		Path:      path,
		Format:    format,
		WordCount: int(wordCount.Int64),
		Speakers:  int(speakers.Int64),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		tr.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		tr.UpdatedAt = updated
	}
	return tr, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func marshalMetadata(meta Metadata) (any, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
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
