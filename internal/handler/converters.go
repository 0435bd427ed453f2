package handler

import (
	"time"

	"certgate/internal/domain"
	"certgate/internal/dto"
	"certgate/internal/quiz"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(user *domain.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Discriminator:   user.Discriminator,
		AvatarURL:       user.AvatarURL,
		IsAdmin:         user.IsAdmin,
		SubmissionCount: user.SubmissionCount,
		CreatedAt:       formatTime(user.CreatedAt),
	}
}

func toSubmissionResponse(submission *domain.Submission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		ID:        submission.ID,
		UserID:    submission.UserID,
		Answers:   submission.Answers,
		Score:     submission.Score,
		Passed:    submission.Passed,
		Status:    string(submission.Status),
		CreatedAt: formatTime(submission.CreatedAt),
		UpdatedAt: formatTime(submission.UpdatedAt),
		User:      toUserResponse(submission.User),
	}
}

func toSubmissionResponses(submissions []*domain.Submission) []*dto.SubmissionResponse {
	out := make([]*dto.SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, toSubmissionResponse(s))
	}
	return out
}

func toQuestionResponses(set *quiz.Set) []dto.QuestionResponse {
	questions := set.Questions()
	out := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, dto.QuestionResponse{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		})
	}
	return out
}
