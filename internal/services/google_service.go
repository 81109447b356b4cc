package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/crstnalianza/rabas-backend/internal/config"
)

// GoogleUserInfo is the subset of Google's tokeninfo response we use.
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Audience      string `json:"aud"`
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleService verifies Google sign-in id tokens.
type GoogleService struct {
	cfg          config.GoogleConfig
	oauth        *oauth2.Config
	client       *http.Client
	tokenInfoURL string
}

// NewGoogleService creates a new GoogleService
func NewGoogleService(cfg config.GoogleConfig) *GoogleService {
	return &GoogleService{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		client:       &http.Client{Timeout: 10 * time.Second},
		tokenInfoURL: googleTokenInfoURL,
	}
}

// ExchangeCode trades a server-side authorization code for Google
// tokens and verifies the id token that came back with them. Web
// clients send a code; native clients send the id token directly.
func (s *GoogleService) ExchangeCode(ctx context.Context, code string) (*GoogleUserInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, fmt.Errorf("google token response is missing an id token")
	}

	return s.VerifyIDToken(idToken)
}

// VerifyIDToken validates the id token against Google's tokeninfo
// endpoint and checks it was issued for our client id.
func (s *GoogleService) VerifyIDToken(idToken string) (*GoogleUserInfo, error) {
	endpoint := s.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	resp, err := s.client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid google id token")
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}

	if userInfo.Audience != s.cfg.ClientID {
		return nil, fmt.Errorf("google id token issued for a different client")
	}

	return &userInfo, nil
}
