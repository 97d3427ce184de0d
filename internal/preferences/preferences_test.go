package preferences

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wavy/internal/auth"
	"wavy/internal/storage"
	"wavy/pkg/models"
)

func setupService(t *testing.T) (*Service, storage.KV) {
	kv := storage.NewMemoryKV()
	return NewService(kv, storage.NewNamespace(""), zaptest.NewLogger(t)), kv
}

func TestService_Defaults(t *testing.T) {
	svc, _ := setupService(t)

	prefs, err := svc.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", prefs.Language)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, "action", prefs.AvatarID)
	assert.Equal(t, "pt-BR", svc.Language(context.Background(), ""))
}

func TestService_Update(t *testing.T) {
	svc, kv := setupService(t)
	ctx := context.Background()

	prefs, err := svc.Update(ctx, "42", models.Preferences{Language: "en-US", AvatarID: "scifi"})
	require.NoError(t, err)
	assert.Equal(t, "en-US", prefs.Language)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, "scifi", prefs.AvatarID)

	raw, ok, err := kv.Get(ctx, "wavy_language_42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"en-US"`, string(raw))

	prefs, err = svc.Update(ctx, "42", models.Preferences{Theme: "light"})
	require.NoError(t, err)
	assert.Equal(t, "en-US", prefs.Language)
	assert.Equal(t, "light", prefs.Theme)
}

func TestService_UpdateValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "42", models.Preferences{Language: "fr-FR"})
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	_, err = svc.Update(ctx, "42", models.Preferences{Theme: "pink"})
	assert.ErrorIs(t, err, ErrInvalidTheme)
	_, err = svc.Update(ctx, "42", models.Preferences{AvatarID: "nobody"})
	assert.ErrorIs(t, err, ErrUnknownAvatar)
	_, err = svc.Update(ctx, "", models.Preferences{Theme: "light"})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestService_Sessions(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, ok, err := svc.Session(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SaveSession(ctx, &models.Session{Token: "tok", UserID: "42"}))
	session, ok, err := svc.Session(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", session.UserID)

	require.NoError(t, svc.ClearSession(ctx, "tok"))
	_, ok, err = svc.Session(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, svc.SaveSession(ctx, &models.Session{}))
}

func TestService_ExpiredSessionIsDropped(t *testing.T) {
	svc, kv := setupService(t)
	ctx := context.Background()

	expired := &models.Session{Token: "old", UserID: "42", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, svc.SaveSession(ctx, expired))

	_, ok, err := svc.Session(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := kv.Get(ctx, "wavy_session_old")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAvatars(t *testing.T) {
	all := Avatars()
	assert.Len(t, all, 16)

	a, ok := AvatarByID("horror2")
	require.True(t, ok)
	assert.Equal(t, "Dark Hero", a.Name)

	groups := AvatarsByCategory()
	assert.Len(t, groups["science fiction"], 2)

	all[0].Name = "changed"
	assert.Equal(t, "Action Hero", Avatars()[0].Name)
}
