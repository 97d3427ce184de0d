// Package preferences persists per-user interface settings and sessions.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wavy/internal/auth"
	"wavy/internal/storage"
	"wavy/pkg/models"
)

const (
	keyLanguage = "language"
	keyTheme    = "theme"
	keyAvatar   = "profile_picture"
	keySession  = "session"

	DefaultLanguage = "pt-BR"
	DefaultTheme    = "dark"
)

var (
	// ErrInvalidLanguage is returned for unsupported languages
	ErrInvalidLanguage = errors.New("unsupported language")
	// ErrInvalidTheme is returned for unknown themes
	ErrInvalidTheme = errors.New("unsupported theme")
	// ErrUnknownAvatar is returned for avatar ids outside the catalogue
	ErrUnknownAvatar = errors.New("unknown avatar")
)

// Languages are the supported interface languages
var Languages = []string{"pt-BR", "en-US"}

// Themes are the selectable themes
var Themes = []string{"dark", "light", "auto"}

// Service reads and writes preferences and sessions
type Service struct {
	kv     storage.KV
	ns     storage.Namespace
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a preferences service
func NewService(kv storage.KV, ns storage.Namespace, logger *zap.Logger) *Service {
	return &Service{kv: kv, ns: ns, logger: logger, now: time.Now}
}

// Get returns the preferences of userID, filling defaults for unset values
func (s *Service) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs := &models.Preferences{Language: DefaultLanguage, Theme: DefaultTheme, AvatarID: Avatars()[0].ID}
	if userID == "" {
		return prefs, nil
	}

	for name, dst := range map[string]*string{
		keyLanguage: &prefs.Language,
		keyTheme:    &prefs.Theme,
		keyAvatar:   &prefs.AvatarID,
	} {
		var v string
		ok, err := s.read(ctx, s.ns.UserKey(name, userID), &v)
		if err != nil {
			return nil, err
		}
		if ok && v != "" {
			*dst = v
		}
	}
	return prefs, nil
}

// Language returns the stored language of userID or the default
func (s *Service) Language(ctx context.Context, userID string) string {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read language preference", zap.String("user_id", userID), zap.Error(err))
		return DefaultLanguage
	}
	return prefs.Language
}

// Update stores the non-empty fields of update
func (s *Service) Update(ctx context.Context, userID string, update models.Preferences) (*models.Preferences, error) {
	if userID == "" {
		return nil, auth.ErrNotAuthenticated
	}
	if update.Language != "" && !contains(Languages, update.Language) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLanguage, update.Language)
	}
	if update.Theme != "" && !contains(Themes, update.Theme) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTheme, update.Theme)
	}
	if update.AvatarID != "" {
		if _, ok := AvatarByID(update.AvatarID); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAvatar, update.AvatarID)
		}
	}

	for name, v := range map[string]string{
		keyLanguage: update.Language,
		keyTheme:    update.Theme,
		keyAvatar:   update.AvatarID,
	} {
		if v == "" {
			continue
		}
		if err := s.write(ctx, s.ns.UserKey(name, userID), v); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

// SaveSession persists a session under its token
func (s *Service) SaveSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token is required")
	}
	return s.write(ctx, s.ns.UserKey(keySession, session.Token), session)
}

// Session returns a persisted session. Expired sessions are deleted and
// reported as absent.
func (s *Service) Session(ctx context.Context, token string) (*models.Session, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	var session models.Session
	ok, err := s.read(ctx, s.ns.UserKey(keySession, token), &session)
	if err != nil || !ok {
		return nil, false, err
	}
	if session.Expired(s.now()) {
		if err := s.ClearSession(ctx, token); err != nil {
			s.logger.Warn("failed to drop expired session", zap.Error(err))
		}
		return nil, false, nil
	}
	return &session, true, nil
}

// ClearSession removes a persisted session
func (s *Service) ClearSession(ctx context.Context, token string) error {
	if err := s.kv.Delete(ctx, s.ns.UserKey(keySession, token)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Service) read(ctx context.Context, key string, dst any) (bool, error) {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("ignoring unreadable value", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Service) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
