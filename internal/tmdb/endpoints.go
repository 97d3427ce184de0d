package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"wavy/pkg/models"
)

// Trending windows
const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
	WindowYear  = "year"
)

// Endpoints of the catalog API
const (
	EndpointPopular    = "/movie/popular"
	EndpointTopRated   = "/movie/top_rated"
	EndpointUpcoming   = "/movie/upcoming"
	EndpointNowPlaying = "/movie/now_playing"
	EndpointDiscover   = "/discover/movie"
	EndpointSearch     = "/search/movie"
	EndpointGenres     = "/genre/movie/list"
	EndpointPopularTV  = "/tv/popular"
)

func pageParams(lang string, page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{
		"language": {lang},
		"page":     {strconv.Itoa(page)},
	}
}

// Page fetches a list endpoint and decodes it into a CatalogPage with
// displayable image URLs
func (c *Client) Page(ctx context.Context, endpoint string, params url.Values) (*models.CatalogPage, error) {
	res, err := c.Fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var page models.CatalogPage
	if err := res.Decode(&page); err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: "malformed list payload", Err: err}
	}
	if page.Results == nil {
		page.Results = []models.CatalogItem{}
	}
	for i := range page.Results {
		page.Results[i] = c.WithImageURLs(page.Results[i])
	}
	page.Freshness = res.Freshness
	return &page, nil
}

// Popular returns currently popular movies
func (c *Client) Popular(ctx context.Context, lang string, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, EndpointPopular, pageParams(lang, page))
}

// PopularSeries returns currently popular series
func (c *Client) PopularSeries(ctx context.Context, lang string, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, EndpointPopularTV, pageParams(lang, page))
}

// TopRated returns the best rated movies
func (c *Client) TopRated(ctx context.Context, lang string, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, EndpointTopRated, pageParams(lang, page))
}

// Upcoming returns movies about to be released
func (c *Client) Upcoming(ctx context.Context, lang string, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, EndpointUpcoming, pageParams(lang, page))
}

// NowPlaying returns movies currently in theatres
func (c *Client) NowPlaying(ctx context.Context, lang string, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, EndpointNowPlaying, pageParams(lang, page))
}

// Search runs a free-text movie search
func (c *Client) Search(ctx context.Context, lang, query string, page int) (*models.CatalogPage, error) {
	params := pageParams(lang, page)
	params.Set("query", query)
	return c.Page(ctx, EndpointSearch, params)
}

// DiscoverByGenre lists movies of a genre by descending popularity
func (c *Client) DiscoverByGenre(ctx context.Context, lang string, genreID, page int) (*models.CatalogPage, error) {
	params := pageParams(lang, page)
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	return c.Page(ctx, EndpointDiscover, params)
}

// Trending lists trending movies. Day and week use the trending endpoint;
// month and year discover popular releases of the current calendar period.
func (c *Client) Trending(ctx context.Context, lang, window string, page int) (*models.CatalogPage, error) {
	switch window {
	case WindowDay, WindowWeek:
		return c.Page(ctx, "/trending/movie/"+window, pageParams(lang, page))
	case WindowMonth, WindowYear:
		start, end := periodBounds(c.now(), window)
		params := pageParams(lang, page)
		params.Set("sort_by", "popularity.desc")
		params.Set("primary_release_date.gte", start.Format("2006-01-02"))
		params.Set("primary_release_date.lte", end.Format("2006-01-02"))
		params.Set("vote_count.gte", "100")
		return c.Page(ctx, EndpointDiscover, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, window)
	}
}

// periodBounds returns the first and last day of the month or year containing now
func periodBounds(now time.Time, window string) (time.Time, time.Time) {
	if window == WindowYear {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
			time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first, first.AddDate(0, 1, -1)
}

// Details returns a movie with its videos and credits appended
func (c *Client) Details(ctx context.Context, lang string, id int64) (*models.MovieDetails, error) {
	endpoint := fmt.Sprintf("/movie/%d", id)
	res, err := c.Fetch(ctx, endpoint, url.Values{
		"language":           {lang},
		"append_to_response": {"videos,credits"},
	})
	if err != nil {
		return nil, err
	}

	var details models.MovieDetails
	if err := res.Decode(&details); err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: "malformed details payload", Err: err}
	}
	details.CatalogItem = c.WithImageURLs(details.CatalogItem)
	details.TrailerKey = TrailerKey(details.Videos)
	details.Freshness = res.Freshness
	return &details, nil
}

// Credits returns cast and crew of a movie
func (c *Client) Credits(ctx context.Context, lang string, id int64) (*models.Credits, error) {
	endpoint := fmt.Sprintf("/movie/%d/credits", id)
	res, err := c.Fetch(ctx, endpoint, url.Values{"language": {lang}})
	if err != nil {
		return nil, err
	}

	var credits models.Credits
	if err := res.Decode(&credits); err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: "malformed credits payload", Err: err}
	}
	return &credits, nil
}

// Similar lists movies similar to id
func (c *Client) Similar(ctx context.Context, lang string, id int64, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, fmt.Sprintf("/movie/%d/similar", id), pageParams(lang, page))
}

// Recommendations lists movies recommended from id
func (c *Client) Recommendations(ctx context.Context, lang string, id int64, page int) (*models.CatalogPage, error) {
	return c.Page(ctx, fmt.Sprintf("/movie/%d/recommendations", id), pageParams(lang, page))
}

// Genres returns the provider's movie genres
func (c *Client) Genres(ctx context.Context, lang string) ([]models.Genre, error) {
	res, err := c.Fetch(ctx, EndpointGenres, url.Values{"language": {lang}})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, &FetchError{Endpoint: EndpointGenres, Message: "malformed genres payload", Err: err}
	}
	return payload.Genres, nil
}
