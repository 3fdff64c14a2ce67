package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

func writeKey(t *testing.T) (string, *rsa.PrivateKey) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path, key
}

func TestInstallationTokenSource_AppJWT(t *testing.T) {
	path, key := writeKey(t)
	ts, err := newInstallationTokenSource(context.Background(), domain.SourceConfig{
		AppID:          42,
		InstallationID: 7,
		PrivateKeyPath: path,
	})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return now }

	signed, err := ts.appJWT()
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Issuer)
	assert.Equal(t, now.Add(-time.Minute), claims.IssuedAt.Time.UTC())
	assert.Equal(t, now.Add(appJWTLifetime), claims.ExpiresAt.Time.UTC())
}

func TestHTTPClient_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := httpClient(ctx, domain.SourceConfig{})
	assert.Error(t, err)

	_, err = httpClient(ctx, domain.SourceConfig{AppID: 1, PrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)

	client, err := httpClient(ctx, domain.SourceConfig{Token: "ghp_example"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
