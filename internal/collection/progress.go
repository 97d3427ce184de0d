package collection

import (
	"context"
	"errors"
	"fmt"
	"math"

	"wavy/pkg/models"
)

// ErrNoProgress is returned by progress operations on other collection kinds
var ErrNoProgress = errors.New("collection does not track progress")

// UpdateProgress upserts the watched minutes of an item
func (s *Store) UpdateProgress(ctx context.Context, ownerID string, entry models.CollectionEntry) (*models.CollectionEntry, error) {
	if !s.kind.Upserts() {
		return nil, ErrNoProgress
	}
	if entry.ProgressMinutes < 0 || entry.TotalMinutes < 0 {
		return nil, errors.New("progress must not be negative")
	}
	return s.Add(ctx, ownerID, entry)
}

// Progress returns the stored progress of an item
func (s *Store) Progress(ctx context.Context, ownerID string, itemID int64) (*models.CollectionEntry, bool, error) {
	if !s.kind.Upserts() {
		return nil, false, ErrNoProgress
	}
	return s.Get(ctx, ownerID, itemID)
}

// FormatRemaining renders remaining minutes as "1h 20m" or "45m"
func FormatRemaining(minutes float64) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := int(minutes / 60)
	mins := int(math.Mod(minutes, 60))
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// ProgressState classifies how far an item was watched
type ProgressState string

const (
	ProgressNotStarted ProgressState = "not_started"
	ProgressWatching   ProgressState = "watching"
	ProgressFinished   ProgressState = "finished"
)

// StateOf classifies an entry: under 5% is not started, over 95% is finished
func StateOf(e models.CollectionEntry) ProgressState {
	pct := e.ProgressPercent()
	switch {
	case pct < 5:
		return ProgressNotStarted
	case pct > 95:
		return ProgressFinished
	default:
		return ProgressWatching
	}
}
