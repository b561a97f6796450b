package mailer

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestBuildMessage_Structure(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "DEV-20260401-AB12CD34.html")
	require.NoError(t, os.WriteFile(attachment, []byte("<html>devis</html>"), 0o644))

	raw, err := BuildMessage("juliette@nana-intelligence.fr", "claire@moreau-conseil.fr", "Votre devis", "Bonjour Claire,", attachment)
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "From: juliette@nana-intelligence.fr")
	assert.Contains(t, msg, "To: claire@moreau-conseil.fr")
	assert.Contains(t, msg, "Subject: Votre devis")
	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, `text/html; charset="UTF-8"`)
	assert.Contains(t, msg, `text/html; name="DEV-20260401-AB12CD34.html"`)
	assert.Contains(t, msg, "Content-Disposition: attachment")
}

func TestBuildMessage_EncodesAccentedSubject(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "devis.pdf")
	require.NoError(t, os.WriteFile(attachment, []byte("%PDF-1.4"), 0o644))

	raw, err := BuildMessage("a@b.fr", "c@d.fr", "Votre devis personnalisé", "corps", attachment)
	require.NoError(t, err)

	msg := string(raw)
	assert.NotContains(t, msg, "Subject: Votre devis personnalisé")
	assert.Contains(t, msg, "=?utf-8?q?")
	assert.Contains(t, msg, `application/pdf; name="devis.pdf"`)
}

func TestBuildMessage_MissingAttachment(t *testing.T) {
	_, err := BuildMessage("a@b.fr", "c@d.fr", "sujet", "corps", "/nonexistent/devis.html")
	require.Error(t, err)
}

func TestIsAuthExpired(t *testing.T) {
	assert.True(t, IsAuthExpired(ErrAuthExpired))
	assert.True(t, IsAuthExpired(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.True(t, IsAuthExpired(&googleapi.Error{Code: http.StatusForbidden}))
	assert.True(t, IsAuthExpired(&oauth2.RetrieveError{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
	}))
	assert.False(t, IsAuthExpired(&googleapi.Error{Code: http.StatusInternalServerError}))
	assert.False(t, IsAuthExpired(errors.New("network down")))
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))
	assert.ErrorIs(t, classifyError(&googleapi.Error{Code: http.StatusUnauthorized}), ErrAuthExpired)
	assert.ErrorIs(t, classifyError(&googleapi.Error{Code: http.StatusTooManyRequests}), ErrRateLimited)

	var se *StagingError
	assert.ErrorAs(t, classifyError(errors.New("boom")), &se)
}

func TestLoadToken_Missing(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "token.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "token.json")
	token := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer"}

	require.NoError(t, SaveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "rt", loaded.RefreshToken)
}

func TestLoadToken_NoRefreshTokenAndExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	stale := &oauth2.Token{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour)}
	require.NoError(t, SaveToken(path, stale))

	_, err := LoadToken(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthExpired)
}
