package discord

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"certgate/internal/config"
	"certgate/internal/domain"
	"certgate/internal/quiz"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport answers every Discord REST call with an empty success so the
// handler can run end to end without a gateway.
type stubTransport struct{}

func (stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("{}")),
		Request:    req,
	}, nil
}

type recordingApprovals struct {
	submissionID string
	action       domain.ReviewAction
	resolvedBy   string
	result       *domain.Submission
	err          error
}

func (r *recordingApprovals) Resolve(ctx context.Context, submissionID string, action domain.ReviewAction, resolvedBy string) (*domain.Submission, error) {
	r.submissionID = submissionID
	r.action = action
	r.resolvedBy = resolvedBy
	return r.result, r.err
}

func newStubbedBot(t *testing.T, approvals ApprovalService) *Bot {
	t.Helper()
	bot, err := NewBot(config.DiscordConfig{
		BotToken:  "test-token",
		GuildID:   "guild-1",
		ChannelID: "channel-1",
	}, "http://localhost:8080", quiz.DefaultSet())
	require.NoError(t, err)
	bot.session.Client = &http.Client{Transport: stubTransport{}}
	bot.SetApprovalService(approvals)
	return bot
}

func buttonInteraction(customID, messageID, clickerID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionMessageComponent,
			Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
			Message: &discordgo.Message{ID: messageID},
			Member:  &discordgo.Member{User: &discordgo.User{ID: clickerID}},
		},
	}
}

func TestHandleInteractionCreate_ResolvesAndRemembersMessage(t *testing.T) {
	submissionID := "01HGZ8VNRYXS8QKNJV5GRWPWDQ"
	approvals := &recordingApprovals{
		result: &domain.Submission{ID: submissionID, Status: domain.StatusApproved},
	}
	bot := newStubbedBot(t, approvals)

	ic := buttonInteraction("approve_"+submissionID, "msg-42", "clicker-1")
	bot.handleInteractionCreate(bot.session, ic)

	assert.Equal(t, submissionID, approvals.submissionID)
	assert.Equal(t, domain.ActionApprove, approvals.action)
	assert.Equal(t, "<@clicker-1>", approvals.resolvedBy)

	// The message carrying the buttons is learned from the interaction, so a
	// process that did not post the notification can still annotate it.
	messageID, ok := bot.lookupMessage(submissionID)
	require.True(t, ok)
	assert.Equal(t, "msg-42", messageID)
}

func TestHandleInteractionCreate_IgnoresForeignButtons(t *testing.T) {
	approvals := &recordingApprovals{}
	bot := newStubbedBot(t, approvals)

	ic := buttonInteraction("someone_elses_button", "msg-42", "clicker-1")
	bot.handleInteractionCreate(bot.session, ic)

	assert.Empty(t, approvals.submissionID)
	_, ok := bot.lookupMessage("someone_elses_button")
	assert.False(t, ok)
}

func TestHandleInteractionCreate_IgnoresNonComponentInteractions(t *testing.T) {
	approvals := &recordingApprovals{}
	bot := newStubbedBot(t, approvals)

	bot.handleInteractionCreate(bot.session, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand},
	})

	assert.Empty(t, approvals.submissionID)
}
