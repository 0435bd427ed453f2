package handler

import (
	"certgate/internal/domain"
	"certgate/internal/dto"
	"certgate/internal/logger"
	"certgate/internal/middleware"
	"certgate/internal/quiz"
	"certgate/internal/service"
	"certgate/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubmissionHandler serves the quiz, submission creation, and the admin
// review endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	approvals   service.ApprovalService
	set         *quiz.Set
	validator   *validation.Validator
}

func NewSubmissionHandler(
	submissions service.SubmissionService,
	approvals service.ApprovalService,
	set *quiz.Set,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		approvals:   approvals,
		set:         set,
		validator:   validation.NewValidator(),
	}
}

// GetQuestions returns the question set without correct answers.
func (h *SubmissionHandler) GetQuestions(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"questions": toQuestionResponses(h.set),
	})
}

// CreateSubmission scores and stores a quiz attempt for the logged-in user.
func (h *SubmissionHandler) CreateSubmission(c *fiber.Ctx) error {
	user := c.Locals(middleware.UserKey).(*domain.User)

	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	if errs := h.validator.ValidateCreateSubmissionRequest(req.Answers); errs != nil {
		return errs
	}

	submission, err := h.submissions.Create(c.Context(), user.ID, req.Answers)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toSubmissionResponse(submission))
}

// ListSubmissions returns every submission with its owner, newest first.
// Admin only.
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	submissions, err := h.submissions.List(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(toSubmissionResponses(submissions))
}

// GetSubmission returns one submission to its owner or an admin.
func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	user := c.Locals(middleware.UserKey).(*domain.User)
	id := c.Params("id")

	if errs := h.validator.ValidateSubmissionID(id); errs != nil {
		return errs
	}

	submission, err := h.submissions.Get(c.Context(), id, user)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(toSubmissionResponse(submission))
}

// ResolveSubmission applies a moderator decision from the web dashboard.
// Shares the guarded transition with the Discord button path, so two racing
// moderators cannot both win.
func (h *SubmissionHandler) ResolveSubmission(c *fiber.Ctx) error {
	admin := c.Locals(middleware.UserKey).(*domain.User)
	id := c.Params("id")

	if errs := h.validator.ValidateSubmissionID(id); errs != nil {
		return errs
	}

	var req dto.AdminActionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	action, err := domain.ParseReviewAction(req.Action)
	if err != nil {
		return err
	}

	submission, err := h.approvals.Resolve(c.Context(), id, action, admin.Username)
	if err != nil {
		return err
	}

	logger.Get().Info("Submission resolved via dashboard",
		zap.String("submission_id", id),
		zap.String("action", string(action)),
		zap.String("admin_id", admin.ID))

	return c.Status(fiber.StatusOK).JSON(toSubmissionResponse(submission))
}
