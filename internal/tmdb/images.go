package tmdb

import (
	"strings"

	"wavy/pkg/models"
)

// Image size tokens
const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
)

// ImageURL combines a relative image path with the image base URL and a
// size token. An empty path yields an empty URL.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = PosterSize
	}
	base := c.config.ImageBaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + size + path
}

// WithImageURLs fills the poster and backdrop URLs of item
func (c *Client) WithImageURLs(item models.CatalogItem) models.CatalogItem {
	if item.PosterPath != nil {
		item.PosterURL = c.ImageURL(*item.PosterPath, PosterSize)
	}
	if item.BackdropPath != nil {
		item.BackdropURL = c.ImageURL(*item.BackdropPath, BackdropSize)
	}
	return item
}

// TrailerKey returns the key of the first YouTube trailer
func TrailerKey(videos *models.VideoList) string {
	if videos == nil {
		return ""
	}
	for _, v := range videos.Results {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v.Key
		}
	}
	return ""
}
