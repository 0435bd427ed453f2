package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"certgate/internal/config"
	"certgate/internal/domain"
	"certgate/internal/dto"
	"certgate/internal/logger"
	"certgate/internal/repository"
	"certgate/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var discordUserMeURL = "https://discord.com/api/users/@me"

// Discord's OAuth2 endpoints; golang.org/x/oauth2 has no canned endpoint for
// Discord, so they are spelled out.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from discord")
	ErrInvalidSessionToken   = errors.New("invalid session token")
	// ErrActiveSessionExists signals that another live session already maps
	// to this identity. The existing session is left untouched.
	ErrActiveSessionExists = errors.New("another session is already active for this user")
)

// AuthService bridges the Discord OAuth handshake into a local session and
// enforces one active session per identity.
type AuthService interface {
	GetDiscordLoginURL(state string) string
	HandleDiscordCallback(ctx context.Context, code string) (sessionToken string, user *domain.User, err error)
	ValidateSession(ctx context.Context, tokenString string) (*dto.SessionClaims, error)
	Logout(ctx context.Context, sessionID string) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type authServiceImpl struct {
	userRepo     repository.UserRepository
	sessions     session.Store
	oauth2Config *oauth2.Config
	appConfig    *config.Config
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repository.UserRepository, sessions session.Store, appConfig *config.Config) (AuthService, error) {
	if len(appConfig.Session.Secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes long")
	}

	return &authServiceImpl{
		userRepo: userRepo,
		sessions: sessions,
		oauth2Config: &oauth2.Config{
			ClientID:     appConfig.Discord.ClientID,
			ClientSecret: appConfig.Discord.ClientSecret,
			RedirectURL:  appConfig.Discord.RedirectURL,
			Scopes:       []string{"identify"},
			Endpoint:     discordEndpoint,
		},
		appConfig: appConfig,
	}, nil
}

func (s *authServiceImpl) GetDiscordLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// HandleDiscordCallback exchanges the authorization code, upserts the user
// record from the Discord profile and, if no other session is live for this
// identity, establishes a new session and returns its signed token.
func (s *authServiceImpl) HandleDiscordCallback(ctx context.Context, code string) (string, *domain.User, error) {
	appLogger := logger.Get()

	discordToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	client := s.oauth2Config.Client(ctx, discordToken)
	resp, err := client.Get(discordUserMeURL)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	var userInfo dto.DiscordUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Username == "" {
		return "", nil, errors.New("discord user info is incomplete")
	}

	user, err := s.upsertUser(ctx, userInfo)
	if err != nil {
		return "", nil, err
	}

	// Single-session rule: if any other live session maps to this identity,
	// reject without touching the existing session.
	existing, err := s.sessions.ActiveSessionForUser(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check active sessions: %w", err)
	}
	if existing != nil {
		appLogger.Warn("Login rejected, session already active",
			zap.String("user_id", user.ID),
			zap.String("session_id", existing.ID))
		return "", nil, ErrActiveSessionExists
	}

	sess, err := s.sessions.Create(ctx, user.ID, s.appConfig.Session.TTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.createSessionToken(user.ID, sess.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	appLogger.Info("User logged in via Discord OAuth",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username))
	return token, user, nil
}

// upsertUser creates the user on first login, or refreshes the mutable
// profile fields on every later one.
func (s *authServiceImpl) upsertUser(ctx context.Context, userInfo dto.DiscordUserInfo) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userInfo.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user by discord id: %w", err)
	}

	if user == nil {
		user = domain.NewUser(userInfo.ID, userInfo.Username)
		user.Discriminator = userInfo.Discriminator
		user.AvatarURL = userInfo.AvatarURL()
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		logger.Get().Info("New user created via Discord OAuth",
			zap.String("user_id", user.ID),
			zap.String("username", user.Username))
		return user, nil
	}

	user.Username = userInfo.Username
	user.Discriminator = userInfo.Discriminator
	user.AvatarURL = userInfo.AvatarURL()
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *authServiceImpl) createSessionToken(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := dto.SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appConfig.Session.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.Session.Secret))
}

// ValidateSession checks the token signature and that the session it names is
// still live in the store. A revoked session makes the token worthless even
// before it expires.
func (s *authServiceImpl) ValidateSession(ctx context.Context, tokenString string) (*dto.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.Session.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	claims, ok := token.Claims.(*dto.SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSessionToken
	}

	live, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session liveness: %w", err)
	}
	if live == nil || live.UserID != claims.UserID {
		return nil, ErrInvalidSessionToken
	}

	return claims, nil
}

// Logout invalidates the session. Idempotent: logging out an already-dead
// session succeeds.
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logger.Get().Info("Session invalidated", zap.String("session_id", sessionID))
	return nil
}

func (s *authServiceImpl) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
