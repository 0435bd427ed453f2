package dto

// CreateSubmissionRequest is the body of POST /api/submissions.
type CreateSubmissionRequest struct {
	Answers map[string]string `json:"answers"`
}

// AdminActionRequest is the body of POST /api/admin/submissions/:id/action.
type AdminActionRequest struct {
	Action string `json:"action"`
}

// SubmissionResponse is the public shape of a submission, optionally joined
// with its owning user.
type SubmissionResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Answers   map[string]string `json:"answers"`
	Score     int               `json:"score"`
	Passed    bool              `json:"passed"`
	Status    string            `json:"status"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	User      *UserResponse     `json:"user,omitempty"`
}

// QuestionResponse is one quiz question as served to the client. The correct
// answer is deliberately absent.
type QuestionResponse struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}
