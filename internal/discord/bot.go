package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"certgate/internal/config"
	"certgate/internal/domain"
	"certgate/internal/logger"
	"certgate/internal/quiz"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// apiTimeout bounds every Discord REST call. Calls past the bound are treated
// as failed, never retried.
const apiTimeout = 10 * time.Second

// interGrantDelay is the pause between consecutive role grants, to stay under
// Discord's rate limits when several roles are configured.
const interGrantDelay = 500 * time.Millisecond

// ApprovalService is the slice of the approval workflow the interaction
// handler needs. Both the web dashboard and a button click funnel into the
// same transition.
type ApprovalService interface {
	Resolve(ctx context.Context, submissionID string, action domain.ReviewAction, resolvedBy string) (*domain.Submission, error)
}

// Bot owns the gateway session and all outbound Discord effects: submission
// notifications, role grants, DMs and notification edits. It is constructed
// explicitly and passed around; there is no package-level session.
type Bot struct {
	session *discordgo.Session
	cfg     config.DiscordConfig
	baseURL string
	set     *quiz.Set

	approvals ApprovalService

	// messageIDs maps submission id to the channel message carrying its
	// approve/deny buttons, so a web-side resolution can annotate it too.
	// Best-effort: entries do not survive a restart.
	mu         sync.Mutex
	messageIDs map[string]string
}

// NewBot creates the bot session without opening the gateway connection.
func NewBot(cfg config.DiscordConfig, baseURL string, set *quiz.Set) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("discord bot token is not configured")
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	// GuildMembers is needed to grant roles, GuildMessages to edit the
	// notification message.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages
	session.Client = &http.Client{Timeout: apiTimeout}

	return &Bot{
		session:    session,
		cfg:        cfg,
		baseURL:    baseURL,
		set:        set,
		messageIDs: make(map[string]string),
	}, nil
}

// SetApprovalService wires the approval workflow in. Must be called before
// Start; the bot and the approval service reference each other, so one of the
// two links has to be set after construction.
func (b *Bot) SetApprovalService(approvals ApprovalService) {
	b.approvals = approvals
}

// Start opens the gateway connection and registers the interaction handler.
func (b *Bot) Start() error {
	if b.approvals == nil {
		return fmt.Errorf("approval service is not wired")
	}

	b.session.AddHandler(b.handleInteractionCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	logger.Get().Info("Discord bot connected",
		zap.String("guild_id", b.cfg.GuildID),
		zap.String("channel_id", b.cfg.ChannelID),
		zap.Int("role_count", len(b.cfg.RoleIDs)))
	return nil
}

// Close shuts the gateway connection down.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) rememberMessage(submissionID, messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messageIDs[submissionID] = messageID
}

func (b *Bot) lookupMessage(submissionID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.messageIDs[submissionID]
	return id, ok
}

func (b *Bot) forgetMessage(submissionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.messageIDs, submissionID)
}
