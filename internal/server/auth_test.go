package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	auth := NewAuthService("secret-key", "jwt-secret")

	assert.True(t, auth.ValidateAPIKey("secret-key"))
	assert.False(t, auth.ValidateAPIKey("wrong"))
	assert.False(t, auth.ValidateAPIKey(""))

	// empty configured key must never validate
	empty := NewAuthService("", "jwt-secret")
	assert.False(t, empty.ValidateAPIKey(""))
}

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("key", "jwt-secret")

	token, err := auth.GenerateToken("hacky", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "hacky", claims.User)
	assert.Equal(t, "scosim", claims.Issuer)
}

func TestValidateTokenRejectsBadInput(t *testing.T) {
	auth := NewAuthService("key", "jwt-secret")

	_, err := auth.ValidateToken("not-a-token")
	assert.Error(t, err)

	// token signed with a different secret
	other := NewAuthService("key", "other-secret")
	token, err := other.GenerateToken("root", time.Hour)
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	auth := NewAuthService("key", "jwt-secret")
	token, err := auth.GenerateToken("root", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer header", "Bearer abc123", "", "abc123"},
		{"raw header", "abc123", "", "abc123"},
		{"query param", "", "abc123", "abc123"},
		{"missing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			url := "/api/sessions"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			c.Request = httptest.NewRequest("GET", url, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(c))
		})
	}
}
