package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/crstnalianza/rabas-backend/internal/config"
)

func newGoogleTestService(serverURL string) *GoogleService {
	svc := NewGoogleService(config.GoogleConfig{
		ClientID:     "rabas-client",
		ClientSecret: "rabas-secret",
		RedirectURL:  "https://rabas.example/auth/google/callback",
	})
	svc.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:  serverURL + "/auth",
		TokenURL: serverURL + "/token",
	}
	svc.tokenInfoURL = serverURL + "/tokeninfo"
	return svc
}

func googleTestServer(t *testing.T, tokenBody map[string]interface{}, info GoogleUserInfo) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(tokenBody))
	})
	mux.HandleFunc("/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "issued-id-token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(info))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestExchangeCode(t *testing.T) {
	t.Run("Exchanges And Verifies", func(t *testing.T) {
		server := googleTestServer(t, map[string]interface{}{
			"access_token": "granted",
			"token_type":   "Bearer",
			"id_token":     "issued-id-token",
		}, GoogleUserInfo{
			Sub:      "google-sub-1",
			Email:    "maria@example.com",
			Name:     "Maria Santos",
			Audience: "rabas-client",
		})
		svc := newGoogleTestService(server.URL)

		info, err := svc.ExchangeCode(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "google-sub-1", info.Sub)
		assert.Equal(t, "maria@example.com", info.Email)
	})

	t.Run("Missing ID Token", func(t *testing.T) {
		server := googleTestServer(t, map[string]interface{}{
			"access_token": "granted",
			"token_type":   "Bearer",
		}, GoogleUserInfo{})
		svc := newGoogleTestService(server.URL)

		_, err := svc.ExchangeCode(context.Background(), "auth-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing an id token")
	})

	t.Run("Wrong Audience Rejected", func(t *testing.T) {
		server := googleTestServer(t, map[string]interface{}{
			"access_token": "granted",
			"token_type":   "Bearer",
			"id_token":     "issued-id-token",
		}, GoogleUserInfo{
			Sub:      "google-sub-1",
			Email:    "maria@example.com",
			Audience: "someone-else",
		})
		svc := newGoogleTestService(server.URL)

		_, err := svc.ExchangeCode(context.Background(), "auth-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different client")
	})
}
