package catalog

import (
	"context"
	"fmt"
	"time"
)

// TransitionStatus atomically moves a show from one status to another. The
// update applies only when the stored status still matches the expected
// pre-state, so two workers racing for the same show see exactly one winner.
// It returns false when the row was not in the expected state, which callers
// treat as "already claimed, skip".
func (s *Store) TransitionStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	if !CanTransition(from, to) {
		return false, fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE shows SET status = ?, error_message = NULL, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkError moves a show to the error state and records the failure reason.
// Unlike TransitionStatus it does not require a known pre-state: error is
// reachable from any non-terminal status.
func (s *Store) MarkError(ctx context.Context, id int64, reason string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE shows SET status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status NOT IN (?, ?)`,
		StatusError,
		nullableString(reason),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusTranscribed,
		StatusError,
	)
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("show %d not found or already terminal", id)
	}
	return nil
}

// ResetStuckTranscribing returns shows stranded in transcribing back to
// ready_for_transcription. A transcribing show found after a restart is an
// anomaly the operator resolves explicitly; nothing resets it automatically.
func (s *Store) ResetStuckTranscribing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE shows SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
		StatusReadyForTranscription,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusTranscribing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck transcribing: %w", err)
	}
	return res.RowsAffected()
}
