package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"wavy/pkg/models"
)

// remoteMovie is the movie payload the backend stores for collections
type remoteMovie struct {
	ID          int64   `json:"id"`
	MovieID     int64   `json:"movie_id"`
	Title       string  `json:"title,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

func toRemoteMovie(e models.CollectionEntry) remoteMovie {
	return remoteMovie{
		ID:          e.ItemID,
		MovieID:     e.ItemID,
		Title:       e.Title,
		Overview:    e.Overview,
		PosterPath:  e.PosterPath,
		ReleaseDate: e.ReleaseDate,
		VoteAverage: e.VoteAverage,
		CreatedAt:   e.AddedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// Favorites lists the remote favorites of userID
func (c *Client) Favorites(ctx context.Context, token, userID string) ([]models.CollectionEntry, error) {
	var out []remoteMovie
	if err := c.do(ctx, http.MethodGet, "/favorites/"+url.PathEscape(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return fromRemote(userID, out), nil
}

// AddFavorite stores a favorite remotely
func (c *Client) AddFavorite(ctx context.Context, token, userID string, entry models.CollectionEntry) error {
	body := map[string]any{"userId": userID, "movie": toRemoteMovie(entry)}
	return c.do(ctx, http.MethodPost, "/favorites", token, body, nil)
}

// RemoveFavorite deletes a remote favorite
func (c *Client) RemoveFavorite(ctx context.Context, token, userID string, itemID int64) error {
	path := fmt.Sprintf("/favorites/%s/%d", url.PathEscape(userID), itemID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// UpdateProgress upserts a continue-watching row
func (c *Client) UpdateProgress(ctx context.Context, token, userID string, entry models.CollectionEntry) error {
	body := map[string]any{
		"userId":   userID,
		"movieId":  entry.ItemID,
		"progress": entry.ProgressMinutes,
		"duration": entry.TotalMinutes,
	}
	return c.do(ctx, http.MethodPost, "/continue-watching", token, body, nil)
}

// Library lists the remote library of userID
func (c *Client) Library(ctx context.Context, token, userID string) ([]models.CollectionEntry, error) {
	var out []remoteMovie
	if err := c.do(ctx, http.MethodGet, "/library/"+url.PathEscape(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return fromRemote(userID, out), nil
}

// AddToLibrary stores a library item remotely
func (c *Client) AddToLibrary(ctx context.Context, token string, entry models.CollectionEntry) error {
	body := map[string]any{"movie": toRemoteMovie(entry)}
	return c.do(ctx, http.MethodPost, "/library", token, body, nil)
}

// RemoveFromLibrary deletes a remote library item
func (c *Client) RemoveFromLibrary(ctx context.Context, token string, itemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/library/%d", itemID), token, nil, nil)
}

func fromRemote(userID string, movies []remoteMovie) []models.CollectionEntry {
	entries := make([]models.CollectionEntry, 0, len(movies))
	for _, m := range movies {
		id := m.MovieID
		if id == 0 {
			id = m.ID
		}
		entries = append(entries, models.CollectionEntry{
			OwnerID:     userID,
			ItemID:      id,
			Title:       m.Title,
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			ReleaseDate: m.ReleaseDate,
			VoteAverage: m.VoteAverage,
		})
	}
	return entries
}
