package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewProvider_LiteralToken(t *testing.T) {
	p, err := NewProvider("tok-abc", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", p.Token())
}

func TestNewProvider_TokenFile(t *testing.T) {
	path := writeTokenFile(t, "tok-from-file\n")

	p, err := NewProvider("", path, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-from-file", p.Token())
}

func TestNewProvider_LiteralWinsOverFile(t *testing.T) {
	path := writeTokenFile(t, "tok-from-file")

	p, err := NewProvider("tok-literal", path, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-literal", p.Token())
}

func TestNewProvider_MissingFile(t *testing.T) {
	_, err := NewProvider("", filepath.Join(t.TempDir(), "absent"), nil)
	require.Error(t, err)
}

func TestReload_NoTokenFile(t *testing.T) {
	p, err := NewProvider("tok-abc", "", nil)
	require.NoError(t, err)

	_, err = p.Reload()
	assert.ErrorIs(t, err, ErrNoTokenSource)
}

func TestReload_PicksUpRotation(t *testing.T) {
	path := writeTokenFile(t, "tok-v1")

	p, err := NewProvider("", path, nil)
	require.NoError(t, err)

	changed, err := p.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "token unchanged on first reload")

	require.NoError(t, os.WriteFile(path, []byte("tok-v2\n"), 0600))

	changed, err = p.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "tok-v2", p.Token())
}

func TestSubject(t *testing.T) {
	p, err := NewProvider(signedToken(t, "user-42"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "user-42", p.Subject())
}

func TestSubject_NotAJWT(t *testing.T) {
	p, err := NewProvider("opaque-session-token", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", p.Subject())
}

func TestSubject_NoToken(t *testing.T) {
	p, err := NewProvider("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", p.Subject())
}
