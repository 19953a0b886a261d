package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Nerzal/gocloak/v13"
	"github.com/google/uuid"

	"github.com/kova98/redditscope.api/config"
	"github.com/kova98/redditscope.api/data"
)

type AuthHandler struct {
	keycloak *gocloak.GoCloak
	realm    string
	clientID string
	secret   string
}

func NewAuthHandler(keycloak *gocloak.GoCloak) *AuthHandler {
	return &AuthHandler{
		keycloak: keycloak,
		realm:    config.Config.KeycloakRealm,
		clientID: config.Config.KeycloakClientID,
		secret:   config.Config.KeycloakClientSecret,
	}
}

// CheckClient logs in with the configured client credentials so that a
// misconfigured realm is reported at startup rather than on the first request.
func (h *AuthHandler) CheckClient(ctx context.Context) error {
	_, err := h.keycloak.LoginClient(ctx, h.clientID, h.secret, h.realm)
	return err
}

func (h *AuthHandler) GetUser(ctx context.Context, authHeader string) Result {
	if authHeader == "" {
		return Unauthorized("Missing authorization header")
	}

	res := h.getUserFromAuthHeader(ctx, authHeader)
	if res.Code != http.StatusOK {
		return res
	}
	userInfo := res.Body.(gocloak.UserInfo)

	return userFromInfo(userInfo)
}

func userFromInfo(userInfo gocloak.UserInfo) Result {
	id, err := uuid.Parse(gocloak.PString(userInfo.Sub))
	if err != nil {
		slog.Error("Failed to parse user ID from Keycloak", "sub", gocloak.PString(userInfo.Sub), "error", err)
		return InternalError(err, "Failed to parse user ID from Keycloak")
	}

	email := gocloak.PString(userInfo.Email)

	// If preferred_username is empty, use the part before the @ in the email
	name := gocloak.PString(userInfo.PreferredUsername)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	return Ok(data.User{
		ID:          id,
		Name:        name,
		DisplayName: gocloak.PString(userInfo.Name),
		Email:       email,
		Avatar:      gocloak.PString(userInfo.Picture),
	})
}

func (h *AuthHandler) getUserFromAuthHeader(ctx context.Context, authHeader string) Result {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Unauthorized("Invalid authorization header format")
	}
	authHeader = strings.TrimPrefix(authHeader, "Bearer ")

	// Validate the token
	_, _, err := h.keycloak.DecodeAccessToken(ctx, authHeader, h.realm)
	if err != nil {
		return Unauthorized("Invalid token")
	}

	userInfo, err := h.keycloak.GetUserInfo(ctx, authHeader, h.realm)
	if err != nil {
		return InternalError(err, "Failed to get user info")
	}

	if userInfo == nil {
		return Unauthorized("User not found")
	}

	return Ok(*userInfo)
}
