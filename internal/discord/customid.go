package discord

import (
	"fmt"
	"strings"

	"certgate/internal/domain"
)

// Button custom IDs carry the action and the submission id, e.g.
// "approve_01HZXW...". Submission ids are ULIDs and contain no underscore, so
// a single split is unambiguous.

func buttonCustomID(action domain.ReviewAction, submissionID string) string {
	return fmt.Sprintf("%s_%s", action, submissionID)
}

func parseButtonCustomID(customID string) (domain.ReviewAction, string, error) {
	raw, submissionID, found := strings.Cut(customID, "_")
	if !found || submissionID == "" {
		return "", "", fmt.Errorf("malformed button custom id: %q", customID)
	}
	action, err := domain.ParseReviewAction(raw)
	if err != nil {
		return "", "", err
	}
	return action, submissionID, nil
}
