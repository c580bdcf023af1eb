package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicatePID indicates an insert collided with an existing external identifier.
var ErrDuplicatePID = errors.New("duplicate pid")

// AddShow inserts a new show and returns the stored row. The PID is the
// natural key; inserting an already-known PID fails with ErrDuplicatePID.
func (s *Store) AddShow(ctx context.Context, show *Show) (*Show, error) {
	if show == nil {
		return nil, errors.New("show is nil")
	}
	if strings.TrimSpace(show.PID) == "" {
		return nil, errors.New("show pid is required")
	}
	if show.Status == "" {
		show.Status = StatusPending
	}
	if _, ok := statusSet[show.Status]; !ok {
		return nil, fmt.Errorf("unknown status %q", show.Status)
	}

	metadataJSON, err := marshalMetadata(show.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO shows (
            pid, title, description, episode, broadcast_date, duration,
            download_path, status, error_message, metadata, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		show.PID,
		show.Title,
		nullableString(show.Description),
		nullableString(show.Episode),
		nullableString(show.BroadcastDate),
		show.Duration,
		nullableString(show.DownloadPath),
		show.Status,
		nullableString(show.ErrorMessage),
		metadataJSON,
		timestamp,
		timestamp,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: shows.pid") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePID, show.PID)
		}
		return nil, fmt.Errorf("insert show: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetShow(ctx, id)
}

// GetShow fetches a show by identifier.
func (s *Store) GetShow(ctx context.Context, id int64) (*Show, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	return show, nil
}

// GetShowByPID fetches a show by its external identifier.
func (s *Store) GetShowByPID(ctx context.Context, pid string) (*Show, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE pid = ?`, pid)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get show by pid: %w", err)
	}
	return show, nil
}

// ShowsByStatus returns shows matching a status ordered by broadcast recency,
// most recent first. A limit of 0 returns all matches.
func (s *Store) ShowsByStatus(ctx context.Context, status Status, limit int) ([]*Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows WHERE status = ? ORDER BY broadcast_date DESC, id`
	args := []any{status}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	return collectShows(rows)
}

// NextForStatus returns the most recently broadcast show in the given status,
// or nil when none exists.
func (s *Store) NextForStatus(ctx context.Context, status Status) (*Show, error) {
	shows, err := s.ShowsByStatus(ctx, status, 1)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, nil
	}
	return shows[0], nil
}

// SearchShows returns shows whose title, description, or episode match the
// query, ordered by broadcast recency.
func (s *Store) SearchShows(ctx context.Context, query string, limit int) ([]*Show, error) {
	if limit <= 0 {
		limit = 20
	}
	term := "%" + query + "%"
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+showColumns+` FROM shows
         WHERE title LIKE ? OR description LIKE ? OR episode LIKE ?
         ORDER BY broadcast_date DESC, id LIMIT ?`,
		term, term, term, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search shows: %w", err)
	}
	defer rows.Close()

	return collectShows(rows)
}

// ListShows returns all shows ordered by broadcast recency.
func (s *Store) ListShows(ctx context.Context) ([]*Show, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+showColumns+` FROM shows ORDER BY broadcast_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	return collectShows(rows)
}

func collectShows(rows *sql.Rows) ([]*Show, error) {
	var shows []*Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	return shows, rows.Err()
}

// UpdateShow persists changes to an existing show. The column set is fixed;
// callers mutate the struct and write it back whole.
func (s *Store) UpdateShow(ctx context.Context, show *Show) error {
	if show == nil {
		return errors.New("show is nil")
	}
	metadataJSON, err := marshalMetadata(show.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	show.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE shows
         SET title = ?, description = ?, episode = ?, broadcast_date = ?, duration = ?,
             download_path = ?, status = ?, error_message = ?, metadata = ?, updated_at = ?
         WHERE id = ?`,
		show.Title,
		nullableString(show.Description),
		nullableString(show.Episode),
		nullableString(show.BroadcastDate),
		show.Duration,
		nullableString(show.DownloadPath),
		show.Status,
		nullableString(show.ErrorMessage),
		metadataJSON,
		show.UpdatedAt.Format(time.RFC3339Nano),
		show.ID,
	); err != nil {
		return fmt.Errorf("update show: %w", err)
	}
	return nil
}

// SetDownloadPath rewrites only the stored download location.
func (s *Store) SetDownloadPath(ctx context.Context, id int64, path string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE shows SET download_path = ?, updated_at = ? WHERE id = ?`,
		nullableString(path),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set download path: %w", err)
	}
	return nil
}

// Health aggregates show counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM shows GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("health counts: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			statusStr string
			count     int
		)
		if err := rows.Scan(&statusStr, &count); err != nil {
			return HealthSummary{}, err
		}
		summary.Total += count
		switch Status(statusStr) {
		case StatusPending:
			summary.Pending = count
		case StatusDownloading:
			summary.Downloading = count
		case StatusDownloaded:
			summary.Downloaded = count
		case StatusReadyForTranscription:
			summary.Ready = count
		case StatusTranscribing:
			summary.Transcribing = count
		case StatusTranscribed:
			summary.Transcribed = count
		case StatusError:
			summary.Errored = count
		}
	}
	return summary, rows.Err()
}

// ClearErrored removes errored shows so their PIDs can be re-ingested.
func (s *Store) ClearErrored(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM shows WHERE status = ?`, StatusError)
	if err != nil {
		return 0, fmt.Errorf("clear errored: %w", err)
	}
	return res.RowsAffected()
}

// RemoveShow deletes a show by identifier.
func (s *Store) RemoveShow(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete show: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
