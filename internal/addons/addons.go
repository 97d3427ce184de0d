// Package addons keeps the per-user list of installed add-ons. Every user
// starts with the built-in set, which can be toggled but not uninstalled.
package addons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"wavy/internal/auth"
	"wavy/internal/storage"
)

const keyAddons = "addons"

var (
	// ErrAlreadyInstalled is returned when installing an id that is present
	ErrAlreadyInstalled = errors.New("add-on already installed")
	// ErrBuiltIn is returned when uninstalling a built-in add-on
	ErrBuiltIn = errors.New("built-in add-ons cannot be uninstalled")
	// ErrNotFound is returned for ids that are not installed
	ErrNotFound = errors.New("add-on not installed")
	// ErrInvalid is returned for add-ons missing required fields
	ErrInvalid = errors.New("invalid add-on")
)

// Type groups add-ons by what they provide
type Type string

const (
	TypePlayer   Type = "player"
	TypeMetadata Type = "metadata"
	TypeStorage  Type = "storage"
)

// Addon is an installed add-on
type Addon struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version,omitempty"`
	Type        Type       `json:"type"`
	Icon        string     `json:"icon,omitempty"`
	Enabled     bool       `json:"enabled"`
	InstalledAt *time.Time `json:"installed_at,omitempty"`
}

// BuiltIn returns the add-ons every user starts with
func BuiltIn() []Addon {
	return []Addon{
		{
			ID:          "youtube_trailers",
			Name:        "YouTube Trailers",
			Description: "Player de trailers do YouTube integrado",
			Version:     "1.0.0",
			Type:        TypePlayer,
			Icon:        "🎬",
			Enabled:     true,
		},
		{
			ID:          "tmdb_metadata",
			Name:        "TMDB Metadata",
			Description: "Metadados de filmes da base TMDB",
			Version:     "1.0.0",
			Type:        TypeMetadata,
			Icon:        "📊",
			Enabled:     true,
		},
		{
			ID:          "local_favorites",
			Name:        "Favoritos Locais",
			Description: "Sistema de favoritos com armazenamento local",
			Version:     "1.0.0",
			Type:        TypeStorage,
			Icon:        "❤️",
			Enabled:     true,
		},
	}
}

func isBuiltIn(id string) bool {
	for _, a := range BuiltIn() {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Service manages installed add-ons
type Service struct {
	kv     storage.KV
	ns     storage.Namespace
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService creates an add-on service
func NewService(kv storage.KV, ns storage.Namespace, logger *zap.Logger) *Service {
	return &Service{kv: kv, ns: ns, logger: logger, now: time.Now}
}

// List returns the installed add-ons of userID in install order
func (s *Service) List(ctx context.Context, userID string) ([]Addon, error) {
	if userID == "" {
		return BuiltIn(), nil
	}
	return s.load(ctx, userID)
}

// ListByType returns the enabled add-ons of the given type
func (s *Service) ListByType(ctx context.Context, userID string, t Type) ([]Addon, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Addon, 0, len(all))
	for _, a := range all {
		if a.Type == t && a.Enabled {
			out = append(out, a)
		}
	}
	return out, nil
}

// IsEnabled reports whether id is installed and enabled
func (s *Service) IsEnabled(ctx context.Context, userID, id string) (bool, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return false, err
	}
	if i := indexOf(all, id); i >= 0 {
		return all[i].Enabled, nil
	}
	return false, nil
}

// Toggle flips the enabled flag of id and returns the updated add-on
func (s *Service) Toggle(ctx context.Context, userID, id string) (*Addon, error) {
	if userID == "" {
		return nil, auth.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	all[i].Enabled = !all[i].Enabled
	if err := s.save(ctx, userID, all); err != nil {
		return nil, err
	}

	s.logger.Info("add-on toggled",
		zap.String("user_id", userID),
		zap.String("addon", id),
		zap.Bool("enabled", all[i].Enabled))
	return &all[i], nil
}

// Install adds addon enabled and stamped with the install time
func (s *Service) Install(ctx context.Context, userID string, addon Addon) (*Addon, error) {
	if userID == "" {
		return nil, auth.ErrNotAuthenticated
	}
	addon.ID = strings.TrimSpace(addon.ID)
	addon.Name = strings.TrimSpace(addon.Name)
	if addon.ID == "" || addon.Name == "" || addon.Type == "" {
		return nil, fmt.Errorf("%w: id, name and type are required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if indexOf(all, addon.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, addon.ID)
	}

	now := s.now().UTC()
	addon.Enabled = true
	addon.InstalledAt = &now
	all = append(all, addon)
	if err := s.save(ctx, userID, all); err != nil {
		return nil, err
	}

	s.logger.Info("add-on installed", zap.String("user_id", userID), zap.String("addon", addon.ID))
	return &addon, nil
}

// Uninstall removes a user-installed add-on
func (s *Service) Uninstall(ctx context.Context, userID, id string) error {
	if userID == "" {
		return auth.ErrNotAuthenticated
	}
	if isBuiltIn(id) {
		return fmt.Errorf("%w: %s", ErrBuiltIn, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	all = append(all[:i], all[i+1:]...)
	if err := s.save(ctx, userID, all); err != nil {
		return err
	}

	s.logger.Info("add-on uninstalled", zap.String("user_id", userID), zap.String("addon", id))
	return nil
}

// load returns the stored list, or the built-in set when nothing is stored
// or the stored value is unreadable
func (s *Service) load(ctx context.Context, userID string) ([]Addon, error) {
	key := s.ns.UserKey(keyAddons, userID)
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load add-ons: %w", err)
	}
	if !ok {
		return BuiltIn(), nil
	}
	var all []Addon
	if err := json.Unmarshal(data, &all); err != nil {
		s.logger.Warn("discarding corrupt add-on list", zap.String("user_id", userID), zap.Error(err))
		return BuiltIn(), nil
	}
	return all, nil
}

func (s *Service) save(ctx context.Context, userID string, all []Addon) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to marshal add-ons: %w", err)
	}
	if err := s.kv.Set(ctx, s.ns.UserKey(keyAddons, userID), data); err != nil {
		return fmt.Errorf("failed to save add-ons: %w", err)
	}
	return nil
}

func indexOf(all []Addon, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
