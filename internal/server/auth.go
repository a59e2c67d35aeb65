package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/goliatone/go-airforms/pkg/airtable"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/store"
)

const (
	sessionTTL      = 7 * 24 * time.Hour
	oauthCookieName = "airforms_oauth"
	oauthCookieTTL  = 10 * time.Minute
)

type userKey struct{}

// sessionClaims identify an airforms user.
type sessionClaims struct {
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID string) (string, error) {
	now := s.now()
	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("server: sign session: %w", err)
	}
	return signed, nil
}

func (s *Server) parseToken(raw string) (string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("server: session has no subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// requireUser loads the session user into the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		userID, err := s.parseToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		user, err := s.store.GetUser(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.logger.Error("auth: load user", "user", userID, "error", err)
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func currentUser(ctx context.Context) model.User {
	user, _ := ctx.Value(userKey{}).(model.User)
	return user
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil || s.oauth.ClientID == "" {
		writeError(w, http.StatusInternalServerError, "AIRTABLE_CLIENT_ID not configured")
		return
	}
	if s.oauth.RedirectURL == "" {
		writeError(w, http.StatusInternalServerError, "AIRTABLE_OAUTH_REDIRECT_URI not configured")
		return
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthCookieName,
		Value:    state + "." + verifier,
		Path:     "/auth/airtable",
		MaxAge:   int(oauthCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if errCode := query.Get("error"); errCode != "" {
		s.redirectError(w, r, errCode, firstNonEmpty(query.Get("error_description"), "OAuth failed"))
		return
	}
	code := query.Get("code")
	if code == "" {
		s.redirectError(w, r, "no_code", "No authorization code received")
		return
	}

	cookie, err := r.Cookie(oauthCookieName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired state parameter")
		return
	}
	state, verifier, ok := strings.Cut(cookie.Value, ".")
	if !ok || state == "" || state != query.Get("state") {
		writeError(w, http.StatusBadRequest, "Invalid or expired state parameter")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthCookieName, Path: "/auth/airtable", MaxAge: -1})

	if s.oauth == nil {
		writeError(w, http.StatusInternalServerError, "AIRTABLE_CLIENT_ID not configured")
		return
	}
	ctx := r.Context()
	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		s.logger.Error("auth: token exchange failed", "error", err)
		s.redirectError(w, r, "token_exchange_failed", "Token exchange failed")
		return
	}

	user := model.User{
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenType:      token.TokenType,
		TokenExpiresAt: token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		user.Scope = scope
	}

	identity, err := s.airtable(ctx, user).WhoAmI(ctx)
	if err != nil {
		s.logger.Error("auth: whoami failed", "error", err)
		s.redirectError(w, r, "token_exchange_failed", "Could not load Airtable profile")
		return
	}
	user.AirtableUserID = identity.ID
	user.Email = identity.Email

	saved, err := s.store.UpsertUser(ctx, user)
	if err != nil {
		s.logger.Error("auth: save user", "airtable_user", identity.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}
	session, err := s.issueToken(saved.ID)
	if err != nil {
		s.logger.Error("auth: issue session", "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	s.logger.Info("auth: user connected", "user", saved.ID, "airtable_user", identity.ID)
	target := strings.TrimRight(s.clientURL, "/") + "/auth/callback?token=" + url.QueryEscape(session)
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, code, description string) {
	values := url.Values{}
	values.Set("error", code)
	values.Set("error_description", description)
	http.Redirect(w, r, strings.TrimRight(s.clientURL, "/")+"/?"+values.Encode(), http.StatusFound)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r.Context()))
}

// airtableFor returns a client for the session user.
func (s *Server) airtableFor(r *http.Request) AirtableAPI {
	return s.airtable(r.Context(), currentUser(r.Context()))
}

func writeAirtableError(w http.ResponseWriter, err error) {
	var apiErr *airtable.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		writeError(w, http.StatusUnauthorized, "Airtable authorization expired")
	case errors.Is(err, airtable.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "Table not found")
	default:
		writeError(w, http.StatusBadGateway, "Airtable request failed")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
