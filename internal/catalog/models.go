package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a catalog show.
type Status string

const (
	StatusPending               Status = "pending"
	StatusDownloading           Status = "downloading"
	StatusDownloaded            Status = "downloaded"
	StatusReadyForTranscription Status = "ready_for_transcription"
	StatusTranscribing          Status = "transcribing"
	StatusTranscribed           Status = "transcribed"
	StatusError                 Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusDownloaded,
	StatusReadyForTranscription,
	StatusTranscribing,
	StatusTranscribed,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// claimedStatuses mark shows owned by a worker for the duration of one operation.
var claimedStatuses = map[Status]struct{}{
	StatusDownloading:  {},
	StatusTranscribing: {},
}

// validTransitions is the edge set of the lifecycle state machine. Error is
// reachable from every non-terminal state and is terminal for automated
// processing; only operator commands move shows out of it.
var validTransitions = map[Status][]Status{
	StatusPending:               {StatusDownloading, StatusError},
	StatusDownloading:           {StatusDownloaded, StatusError},
	StatusDownloaded:            {StatusReadyForTranscription, StatusError},
	StatusReadyForTranscription: {StatusTranscribing, StatusError},
	StatusTranscribing:          {StatusTranscribed, StatusError},
	StatusTranscribed:           {},
	StatusError:                 {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether the state machine permits moving from one
// status directly to another.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsClaimedStatus reports whether a status marks a show as owned by a worker.
func IsClaimedStatus(status Status) bool {
	_, ok := claimedStatuses[status]
	return ok
}

// IsTerminal reports whether automated processing is finished with a show.
func IsTerminal(status Status) bool {
	return len(validTransitions[status]) == 0
}

// Metadata holds the free-form descriptive fields attached to a show.
type Metadata struct {
	Channel    string   `json:"channel,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	Guidance   string   `json:"guidance,omitempty"`
	WebURL     string   `json:"web_url,omitempty"`
}

// Show represents one broadcast item tracked through its lifecycle.
//
// PID is the stable external identifier assigned by the upstream catalog;
// it is unique across the shows table and re-ingesting the same PID is a
// no-op. BroadcastDate is stored as the raw timestamp string the catalog
// supplies; its lexical ordering matches its chronological ordering.
type Show struct {
	ID            int64
	PID           string
	Title         string
	Description   string
	Episode       string
	BroadcastDate string
	Duration      int
	DownloadPath  string
	Status        Status
	ErrorMessage  string
	Metadata      Metadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsClaimed returns true when the show is owned by an in-flight worker.
func (s Show) IsClaimed() bool {
	return IsClaimedStatus(s.Status)
}

// Transcription represents one persisted output format of a transcription.
// The (ShowID, Format) pair is unique; re-transcribing replaces the row.
type Transcription struct {
	ID        int64
	ShowID    int64
	Path      string
	Format    string
	WordCount int
	Speakers  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HealthSummary describes aggregated show counts per lifecycle state.
type HealthSummary struct {
	Total        int
	Pending      int
	Downloading  int
	Downloaded   int
	Ready        int
	Transcribing int
	Transcribed  int
	Errored      int
}
