package models

// CatalogItem is a movie or series record from the metadata provider
type CatalogItem struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"` // series use name instead of title
	Overview         string   `json:"overview"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	ReleaseDate      string   `json:"release_date,omitempty"`
	FirstAirDate     string   `json:"first_air_date,omitempty"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count,omitempty"`
	Popularity       float64  `json:"popularity,omitempty"`
	GenreIDs         []int    `json:"genre_ids,omitempty"`
	GenreNames       []string `json:"genre_names,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
	OriginCountry    []string `json:"origin_country,omitempty"`
	MediaType        string   `json:"media_type,omitempty"`
	PosterURL        string   `json:"poster_url,omitempty"`
	BackdropURL      string   `json:"backdrop_url,omitempty"`
}

// DisplayTitle returns the title for movies and the name for series
func (c CatalogItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// HasGenre reports whether the item is tagged with genreID
func (c CatalogItem) HasGenre(genreID int) bool {
	for _, id := range c.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// CatalogPage is one page of a list endpoint
type CatalogPage struct {
	Page         int           `json:"page"`
	Results      []CatalogItem `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Freshness    Freshness     `json:"freshness,omitempty"`
}

// Genre is a provider genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video is a trailer, teaser or clip attached to a title
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// VideoList wraps the appended videos of a details response
type VideoList struct {
	Results []Video `json:"results"`
}

// CastMember is an actor credit
type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character,omitempty"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// CrewMember is a crew credit
type CrewMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job,omitempty"`
	Department  string  `json:"department,omitempty"`
	ProfilePath *string `json:"profile_path"`
}

// Credits lists cast and crew of a title
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MovieDetails is the detail record of a single title
type MovieDetails struct {
	CatalogItem
	Runtime    int        `json:"runtime,omitempty"`
	Tagline    string     `json:"tagline,omitempty"`
	Status     string     `json:"status,omitempty"`
	Genres     []Genre    `json:"genres,omitempty"`
	Videos     *VideoList `json:"videos,omitempty"`
	Credits    *Credits   `json:"credits,omitempty"`
	TrailerKey string     `json:"trailer_key,omitempty"`
	Freshness  Freshness  `json:"freshness,omitempty"`
}
