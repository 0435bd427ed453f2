package discord

import (
	"context"
	"errors"

	"certgate/internal/domain"
	"certgate/internal/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// handleInteractionCreate resolves a submission from an approve/deny button
// click. The clicker is implicitly trusted: only moderators can see the
// notification channel. The flow is a plain sequence: defer the reply, run
// the transition, edit the deferred reply.
func (b *Bot) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	action, submissionID, err := parseButtonCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		// Not one of ours.
		return
	}

	// The interaction carries the message the button lives on, so the
	// annotation edit works even when this process did not post it.
	if i.Message != nil {
		b.rememberMessage(submissionID, i.Message.ID)
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		logger.Get().Warn("Failed to defer interaction reply",
			zap.String("submission_id", submissionID),
			zap.Error(err))
		return
	}

	clicker := interactionUserID(i)
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	reply := "Submission " + string(action.Status()) + " successfully."
	if _, err := b.approvals.Resolve(ctx, submissionID, action, "<@"+clicker+">"); err != nil {
		var domainErr *domain.DomainError
		switch {
		case errors.As(err, &domainErr) && domainErr.Code == domain.CodeAlreadyResolved:
			reply = "This submission has already been resolved."
		case errors.As(err, &domainErr) && domainErr.Code == domain.CodeSubmissionNotFound:
			reply = "This submission no longer exists."
		default:
			logger.Get().Error("Failed to resolve submission from button",
				zap.String("submission_id", submissionID),
				zap.String("action", string(action)),
				zap.Error(err))
			reply = "An error occurred processing this action."
		}
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &reply,
	}); err != nil {
		logger.Get().Warn("Failed to edit interaction reply",
			zap.String("submission_id", submissionID),
			zap.Error(err))
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
