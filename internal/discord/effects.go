package discord

import (
	"context"
	"time"

	"certgate/internal/domain"
	"certgate/internal/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	approvedDM = "Congratulations! Your submission has been approved and you have been given the Verified Staff role."
	deniedDM   = "Your submission has been denied."
)

// ApplyResolution performs the external side effects of a resolved
// submission: role grants plus a DM on approval, a DM only on denial, and a
// best-effort edit of the original notification message. Every step is
// independently caught and logged; nothing here can undo the status
// transition that already happened.
func (b *Bot) ApplyResolution(ctx context.Context, submission *domain.Submission, action domain.ReviewAction, resolvedBy string) {
	if action == domain.ActionApprove {
		b.grantRoles(ctx, submission.UserID)
	}

	dm := deniedDM
	if action == domain.ActionApprove {
		dm = approvedDM
	}
	if err := b.sendDM(submission.UserID, dm); err != nil {
		logger.Get().Warn("Failed to DM user about resolution",
			zap.String("user_id", submission.UserID),
			zap.String("submission_id", submission.ID),
			zap.Error(err))
	}

	b.annotateNotification(submission, action, resolvedBy)
}

// grantRoles adds each configured role to the guild member, sequentially with
// a fixed delay in between. A failed grant is logged and the loop continues.
func (b *Bot) grantRoles(ctx context.Context, userID string) {
	if b.cfg.GuildID == "" {
		return
	}

	for i, roleID := range b.cfg.RoleIDs {
		if err := b.session.GuildMemberRoleAdd(b.cfg.GuildID, userID, roleID); err != nil {
			logger.Get().Warn("Failed to grant role",
				zap.String("user_id", userID),
				zap.String("role_id", roleID),
				zap.Error(err))
		}

		if i < len(b.cfg.RoleIDs)-1 {
			select {
			case <-time.After(interGrantDelay):
			case <-ctx.Done():
				logger.Get().Warn("Role granting cut short",
					zap.String("user_id", userID),
					zap.Error(ctx.Err()))
				return
			}
		}
	}
}

// annotateNotification edits the original channel message: appends a status
// field, recolors the embed and strips the approve/deny buttons.
func (b *Bot) annotateNotification(submission *domain.Submission, action domain.ReviewAction, resolvedBy string) {
	messageID, ok := b.lookupMessage(submission.ID)
	if !ok {
		return
	}

	msg, err := b.session.ChannelMessage(b.cfg.ChannelID, messageID)
	if err != nil || len(msg.Embeds) == 0 {
		logger.Get().Warn("Failed to fetch notification message for annotation",
			zap.String("submission_id", submission.ID),
			zap.Error(err))
		return
	}

	status := action.Status()
	embed := msg.Embeds[0]
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Status",
		Value: "marked as " + string(status) + " by " + resolvedBy,
	})
	if status == domain.StatusApproved {
		embed.Color = colorPassed
	} else {
		embed.Color = colorFailed
	}

	embeds := []*discordgo.MessageEmbed{embed}
	components := []discordgo.MessageComponent{}
	_, err = b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    b.cfg.ChannelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		logger.Get().Warn("Failed to annotate notification message",
			zap.String("submission_id", submission.ID),
			zap.Error(err))
		return
	}

	b.forgetMessage(submission.ID)
}
