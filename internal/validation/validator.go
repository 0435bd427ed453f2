package validation

import (
	"regexp"
	"strings"

	"certgate/internal/domain"
)

const (
	maxAnswerEntries = 50
	maxAnswerLength  = 500
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCreateSubmissionRequest checks the shape of a submitted answer set:
// a mapping of string question ids to string answer texts. Whether the ids
// match real questions is the scorer's concern, not validation's.
func (v *Validator) ValidateCreateSubmissionRequest(answers map[string]string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	// An empty map is a legal submission (every question scores as
	// incorrect); only an absent answers field is a request error.
	if answers == nil {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}
	if len(answers) > maxAnswerEntries {
		errors = append(errors, domain.NewOutOfRangeError("answers", len(answers), 1, maxAnswerEntries))
		return errors
	}

	for questionID, answer := range answers {
		if strings.TrimSpace(questionID) == "" {
			errors = append(errors, domain.NewInvalidFormatError("answers", questionID))
			continue
		}
		if len(answer) > maxAnswerLength {
			errors = append(errors, domain.NewOutOfRangeError("answers."+questionID, len(answer), 0, maxAnswerLength))
		}
	}

	return errors
}

// ValidateSubmissionID checks a submission id path parameter.
func (v *Validator) ValidateSubmissionID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}

	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
