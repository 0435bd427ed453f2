package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"certgate/internal/domain"
	"certgate/internal/logger"
	"certgate/internal/quiz"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	colorPassed = 0x00FF00
	colorFailed = 0xFF0000

	answerSnippetLen = 50
	adminDMParallel  = 4
)

// buildResponseSheet renders the per-question correct/incorrect comparison
// shown to moderators in the notification embed.
func buildResponseSheet(set *quiz.Set, answers map[string]string) string {
	var sb strings.Builder
	for _, q := range set.Questions() {
		userAnswer, ok := answers[q.ID]
		mark := "❌"
		if ok && userAnswer == q.Correct {
			mark = "✅"
		}
		display := userAnswer
		if display == "" {
			display = "No response"
		}
		// Truncate on runes so a multi-byte answer is not cut mid-sequence.
		if runes := []rune(display); len(runes) > answerSnippetLen {
			display = string(runes[:answerSnippetLen]) + "..."
		}
		fmt.Fprintf(&sb, "**%s**: %s\n*User:* %s\n", strings.ToUpper(q.ID), mark, display)
	}
	return sb.String()
}

func outcomeColor(passed bool) int {
	if passed {
		return colorPassed
	}
	return colorFailed
}

// NotifySubmission posts the review embed with approve/deny buttons to the
// configured channel. Failures are logged and swallowed: notification is
// at-most-once and must never fail submission creation.
func (b *Bot) NotifySubmission(ctx context.Context, submission *domain.Submission, user *domain.User) {
	if b.cfg.ChannelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("New Test Submission: %s", user.Username),
		Description: "**Response Sheet**\n" + buildResponseSheet(b.set, submission.Answers),
		Color:       outcomeColor(submission.Passed),
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score", Value: fmt.Sprintf("%d%%", submission.Score), Inline: true},
			{Name: "Passed", Value: passedLabel(submission.Passed), Inline: true},
			{Name: "Submission ID", Value: submission.ID, Inline: true},
		},
	}

	msg, err := b.session.ChannelMessageSendComplex(b.cfg.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Approve",
						Style:    discordgo.SuccessButton,
						CustomID: buttonCustomID(domain.ActionApprove, submission.ID),
					},
					discordgo.Button{
						Label:    "Deny",
						Style:    discordgo.DangerButton,
						CustomID: buttonCustomID(domain.ActionDeny, submission.ID),
					},
				},
			},
		},
	})
	if err != nil {
		logger.Get().Warn("Failed to post submission notification",
			zap.String("submission_id", submission.ID),
			zap.Error(err))
		return
	}

	b.rememberMessage(submission.ID, msg.ID)
}

// NotifyAdmins direct-messages every administrator a condensed summary with a
// link to the review dashboard. Each DM is independently best-effort.
func (b *Bot) NotifyAdmins(ctx context.Context, admins []*domain.User, submission *domain.Submission, user *domain.User) {
	if len(admins) == 0 {
		return
	}

	summary := fmt.Sprintf(
		"New submission from **%s**: %d%% (%s). Review it at %s/admin",
		user.Username, submission.Score, passedLabel(submission.Passed), b.baseURL)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(adminDMParallel)
	for _, admin := range admins {
		admin := admin
		g.Go(func() error {
			if err := b.sendDM(admin.ID, summary); err != nil {
				logger.Get().Warn("Failed to DM admin about submission",
					zap.String("admin_id", admin.ID),
					zap.String("submission_id", submission.ID),
					zap.Error(err))
			}
			return nil
		})
	}
	g.Wait()
}

func (b *Bot) sendDM(userID, content string) error {
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := b.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

func passedLabel(passed bool) string {
	if passed {
		return "Yes"
	}
	return "No"
}
