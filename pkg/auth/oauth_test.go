package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func TestLocalRedirect(t *testing.T) {
	logger := zap.NewNop()
	cases := map[string]string{
		"urn:ietf:wg:oauth:2.0:oob":       "http://localhost:6789/oauth2callback",
		"http://localhost":                "http://localhost:6789",
		"http://localhost:1234/cb":        "http://localhost:6789/cb",
		"http://127.0.0.1/cb":             "http://127.0.0.1:6789/cb",
		"https://example.com/oauth2/back": "https://example.com/oauth2/back",
	}
	for in, want := range cases {
		assert.Equal(t, want, localRedirect(in, logger), in)
	}
}

func TestConfigFromJSON(t *testing.T) {
	secrets := []byte(`{"installed":{
		"client_id":"id","client_secret":"secret",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`)

	cfg, err := configFromJSON(secrets, []string{"scope-a"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, []string{"scope-a"}, cfg.Scopes)
	assert.Equal(t, "http://localhost:6789", cfg.RedirectURL)

	_, err = configFromJSON([]byte(`not json`), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", TokenFile)
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, saveToken(path, tok))

	got, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, got.Expiry.Equal(tok.Expiry))

	_, err = tokenFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingTokenSourcePersistsRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFile)
	old := &oauth2.Token{AccessToken: "old"}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "r"}

	src := &savingTokenSource{base: staticSource{fresh}, last: old, path: path, logger: zap.NewNop()}
	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)

	saved, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", saved.AccessToken)
}
