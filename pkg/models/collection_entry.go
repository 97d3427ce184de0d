package models

import "time"

// CollectionEntry is a reference to a catalog item held in a user's collection.
// Favorites, library and continue-watching share this shape; the progress
// fields are only populated for continue-watching.
type CollectionEntry struct {
	OwnerID         string    `json:"owner_id"`
	ItemID          int64     `json:"item_id"`
	Title           string    `json:"title,omitempty"`
	Overview        string    `json:"overview,omitempty"`
	PosterPath      string    `json:"poster_path,omitempty"`
	ReleaseDate     string    `json:"release_date,omitempty"`
	VoteAverage     float64   `json:"vote_average,omitempty"`
	AddedAt         time.Time `json:"added_at"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
	ProgressMinutes float64   `json:"progress_minutes,omitempty"`
	TotalMinutes    float64   `json:"total_minutes,omitempty"`
}

// ProgressPercent returns watched progress in the 0-100 range
func (e CollectionEntry) ProgressPercent() float64 {
	if e.TotalMinutes <= 0 {
		return 0
	}
	pct := e.ProgressMinutes / e.TotalMinutes * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// RemainingMinutes returns the unwatched runtime, never negative
func (e CollectionEntry) RemainingMinutes() float64 {
	remaining := e.TotalMinutes - e.ProgressMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}
