package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"certgate/internal/config"
	"certgate/internal/domain"
	"certgate/internal/logger"
	"certgate/internal/middleware"
	"certgate/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const oauthStateCookieName = "oauthstate"

// AuthHandler serves the Discord OAuth flow and session endpoints.
type AuthHandler struct {
	authService service.AuthService
	appConfig   *config.Config
}

func NewAuthHandler(authService service.AuthService, appConfig *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		appConfig:   appConfig,
	}
}

// DiscordLogin initiates the Discord OAuth2 login flow: sets a CSRF state
// cookie and redirects to Discord's consent page.
func (h *AuthHandler) DiscordLogin(c *fiber.Ctx) error {
	appLogger := logger.Get()
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		appLogger.Error("Failed to generate random state for OAuth", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(middleware.ErrorResponse{
			Code: "OAUTH_STATE_GENERATION_ERROR", Message: "Could not generate state for OAuth flow", Status: fiber.StatusInternalServerError,
		})
	}
	state := base64.URLEncoding.EncodeToString(b)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	loginURL := h.authService.GetDiscordLoginURL(state)
	return c.Redirect(loginURL, fiber.StatusTemporaryRedirect)
}

// DiscordCallback handles the redirect back from Discord. On success it sets
// the session cookie and redirects into the quiz; OAuth failures redirect to
// the front page with a query flag rather than surfacing JSON to the browser.
func (h *AuthHandler) DiscordCallback(c *fiber.Ctx) error {
	appLogger := logger.Get()
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookieName)

	// One-shot state cookie.
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	if code == "" || receivedState == "" || expectedState == "" || receivedState != expectedState {
		appLogger.Warn("OAuth state mismatch or missing code",
			zap.String("received", receivedState))
		return c.Redirect(h.frontendURL("/?error=auth_failed"), fiber.StatusFound)
	}

	token, user, err := h.authService.HandleDiscordCallback(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrActiveSessionExists) {
			return c.Redirect(h.frontendURL("/?error=active_session"), fiber.StatusFound)
		}
		appLogger.Error("Failed to handle Discord callback", zap.Error(err))
		return c.Redirect(h.frontendURL("/?error=auth_failed"), fiber.StatusFound)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.appConfig.Session.TTL),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	appLogger.Info("Discord OAuth callback successful", zap.String("user_id", user.ID))
	return c.Redirect(h.frontendURL("/test"), fiber.StatusFound)
}

// Me returns the authenticated user, or null for anonymous requests. Always
// 200, so the frontend can probe login state without error handling.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := c.Locals(middleware.UserKey).(*domain.User)
	if !ok || user == nil {
		return c.Status(fiber.StatusOK).JSON(nil)
	}
	return c.Status(fiber.StatusOK).JSON(toUserResponse(user))
}

// Logout invalidates the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals(middleware.SessionIDKey).(string)
	if sessionID != "" {
		if err := h.authService.Logout(c.Context(), sessionID); err != nil {
			return domain.NewInternalError("failed to invalidate session", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) frontendURL(path string) string {
	base := h.appConfig.Server.BaseURL
	if base == "" {
		return path
	}
	return base + path
}
