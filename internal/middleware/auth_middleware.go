package middleware

import (
	"certgate/internal/domain"
	"certgate/internal/logger"
	"certgate/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	SessionCookieName = "certgate_session"
	UserIDKey         = "userID"    // Key for storing UserID in fiber.Ctx locals
	SessionIDKey      = "sessionID" // Key for storing the session ID in fiber.Ctx locals
	UserKey           = "user"      // Key for storing the loaded *domain.User in fiber.Ctx locals
)

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}

// Protected requires a valid session cookie. It validates the token, checks
// the session is still live, loads the user record and sets it in locals.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookieName)
		if tokenString == "" {
			return unauthorized(c, "MISSING_SESSION", "Not logged in")
		}

		claims, err := authService.ValidateSession(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("Session validation failed", zap.Error(err))
			return unauthorized(c, "INVALID_SESSION", "Session is invalid or expired")
		}

		user, err := authService.GetUser(c.Context(), claims.UserID)
		if err != nil {
			return domain.NewInternalError("failed to load session user", err)
		}
		if user == nil {
			// Session survived the user record; treat it as dead.
			return unauthorized(c, "INVALID_SESSION", "Session is invalid or expired")
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(SessionIDKey, claims.SessionID)
		c.Locals(UserKey, user)

		return c.Next()
	}
}

// RequireAdmin allows only users with the admin flag through. Must run after
// Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserKey).(*domain.User)
		if !ok || user == nil {
			return unauthorized(c, "MISSING_SESSION", "Not logged in")
		}
		// Insufficient privilege reads the same as no session: 401, so the
		// admin surface does not confirm its own existence.
		if !user.IsAdmin {
			return unauthorized(c, "UNAUTHORIZED", "Unauthorized")
		}
		return c.Next()
	}
}

// OptionalAuth resolves the session if one is present but lets anonymous
// requests through untouched. Used by the identity endpoint.
func OptionalAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookieName)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := authService.ValidateSession(c.Context(), tokenString)
		if err != nil {
			return c.Next()
		}

		user, err := authService.GetUser(c.Context(), claims.UserID)
		if err != nil || user == nil {
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(SessionIDKey, claims.SessionID)
		c.Locals(UserKey, user)

		return c.Next()
	}
}
