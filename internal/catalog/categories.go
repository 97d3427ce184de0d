// Package catalog holds the static category registry and the service that
// turns a category into a catalog query.
package catalog

import (
	"errors"
	"fmt"
)

// ErrCategoryNotFound is returned when resolving an unknown category id
var ErrCategoryNotFound = errors.New("category not found")

// QueryKind tells how a category is queried
type QueryKind string

const (
	// QueryFeatured categories map to a named listing endpoint
	QueryFeatured QueryKind = "FEATURED"
	// QueryGenre categories discover by a fixed genre id
	QueryGenre QueryKind = "GENRE"
)

// Category is a named, preconfigured catalog query
type Category struct {
	ID        string            `json:"id"`
	Titles    map[string]string `json:"-"`
	QueryKind QueryKind         `json:"query_kind"`
	Endpoint  string            `json:"endpoint,omitempty"`
	GenreID   int               `json:"genre_id,omitempty"`
}

// Title returns the localized title, falling back to the pt-BR one
func (c Category) Title(lang string) string {
	if t, ok := c.Titles[lang]; ok {
		return t
	}
	return c.Titles["pt-BR"]
}

// Localized is the wire view of a category in one language
type Localized struct {
	Category
	Title string `json:"title"`
}

// Localize returns the wire view in lang
func (c Category) Localize(lang string) Localized {
	return Localized{Category: c, Title: c.Title(lang)}
}

func featured(id, endpoint, pt, en string) Category {
	return Category{
		ID:        id,
		Titles:    map[string]string{"pt-BR": pt, "en-US": en},
		QueryKind: QueryFeatured,
		Endpoint:  endpoint,
	}
}

func genre(id string, genreID int) Category {
	return Category{
		ID:        id,
		Titles:    map[string]string{"pt-BR": genreNames["pt-BR"][genreID], "en-US": genreNames["en-US"][genreID]},
		QueryKind: QueryGenre,
		GenreID:   genreID,
	}
}

// registry is built once and never mutated
var registry = []Category{
	featured("trending", "/trending/movie/day", "Em Alta", "Trending"),
	featured("popular", "/movie/popular", "Populares", "Popular"),
	featured("top_rated", "/movie/top_rated", "Mais Bem Avaliados", "Top Rated"),
	genre("action", 28),
	genre("comedy", 35),
	genre("drama", 18),
	genre("horror", 27),
	genre("romance", 10749),
	genre("sci-fi", 878),
	genre("thriller", 53),
	genre("animation", 16),
}

var byID = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, c := range registry {
		m[c.ID] = i
	}
	return m
}()

// Resolve returns the category with id
func Resolve(id string) (Category, error) {
	i, ok := byID[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, id)
	}
	return registry[i], nil
}

// List returns every category in display order
func List() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

var genreNames = map[string]map[int]string{
	"pt-BR": {
		28: "Ação", 12: "Aventura", 16: "Animação", 35: "Comédia", 80: "Crime",
		99: "Documentário", 18: "Drama", 10751: "Família", 14: "Fantasia",
		36: "História", 27: "Terror", 10402: "Música", 9648: "Mistério",
		10749: "Romance", 878: "Ficção Científica", 10770: "Cinema TV",
		53: "Thriller", 10752: "Guerra", 37: "Faroeste",
	},
	"en-US": {
		28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
		99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy",
		36: "History", 27: "Horror", 10402: "Music", 9648: "Mystery",
		10749: "Romance", 878: "Science Fiction", 10770: "TV Movie",
		53: "Thriller", 10752: "War", 37: "Western",
	},
}

var unknownGenre = map[string]string{"pt-BR": "Desconhecido", "en-US": "Unknown"}

// GenreName returns the name of a genre id in lang
func GenreName(genreID int, lang string) string {
	names, ok := genreNames[lang]
	if !ok {
		lang = "pt-BR"
		names = genreNames[lang]
	}
	if name, ok := names[genreID]; ok {
		return name
	}
	return unknownGenre[lang]
}

// GenreNames maps each id through GenreName
func GenreNames(genreIDs []int, lang string) []string {
	out := make([]string, 0, len(genreIDs))
	for _, id := range genreIDs {
		out = append(out, GenreName(id, lang))
	}
	return out
}
