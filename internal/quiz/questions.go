package quiz

// Question is one multiple-choice item of the certification test. Correct is
// the exact answer text a submission must match.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Correct string   `json:"-"`
}

// Set is the ordered, authoritative question list. The HTTP handler, the
// scorer and the Discord notifier all consume the same Set so the three can
// never drift.
type Set struct {
	questions []Question
	byID      map[string]Question
}

// NewSet builds a Set from an ordered question list.
func NewSet(questions []Question) *Set {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &Set{questions: questions, byID: byID}
}

// Questions returns the ordered question list.
func (s *Set) Questions() []Question {
	return s.questions
}

// Lookup returns the question with the given id.
func (s *Set) Lookup(id string) (Question, bool) {
	q, ok := s.byID[id]
	return q, ok
}

// Len returns the number of questions.
func (s *Set) Len() int {
	return len(s.questions)
}

// DefaultSet returns the staff certification question set.
func DefaultSet() *Set {
	return NewSet([]Question{
		{
			ID:   "q1",
			Text: "A user creates a roster ticket with the message: 'I want to join the team, what should I do?'",
			Options: []string{
				"Hello, what is your age and how may I assist you today? Please review the requirements and choose a roster.",
				"Sup how did you find us?",
				"Hey, someone else would be helping you.",
				"I accepted your ticket, what do you need help with?",
			},
			Correct: "Hello, what is your age and how may I assist you today? Please review the requirements and choose a roster.",
		},
		{
			ID:   "q2",
			Text: "A user submits an application for Pro or Semi-Pro roster position.",
			Options: []string{
				"Ping a fellow trial moderator.",
				"Give them the role they asked for.",
				"Request Fortnite tracker and earnings verification",
				"Choose to ignore and close their ticket.",
			},
			Correct: "Request Fortnite tracker and earnings verification",
		},
		{
			ID:   "q3",
			Text: "An Academy roster applicant meets PR requirements.",
			Options: []string{
				"Give them the role without verification.",
				"Verify Fortnite tracker authenticity and PR.",
				"Choose to ignore",
				"Ping high authority moderators.",
			},
			Correct: "Verify Fortnite tracker authenticity and PR.",
		},
		{
			ID:   "q4",
			Text: "A user applies for Streamer or Content Creator position.",
			Options: []string{
				"Ask their PR and tracker link.",
				"Choose to ignore / Close their ticket.",
				"Ping @Creative Department.",
				"Ask for socials and check their content & follower requirements.",
			},
			Correct: "Ask for socials and check their content & follower requirements.",
		},
		{
			ID:   "q5",
			Text: "A GFX/VFX applicant submits their portfolio.",
			Options: []string{
				"Give them role directly.",
				"Request portfolio and proof of work & ping @GFX/VFX Lead.",
				"Ignore their request.",
				"Ping @Content Department.",
			},
			Correct: "Request portfolio and proof of work & ping @GFX/VFX Lead.",
		},
		{
			ID:   "q6",
			Text: "A Creative roster applicant provides freebuilding clips.",
			Options: []string{
				"Ping @Content Department",
				"Request portfolio and give them roles directly.",
				"Ignore their request.",
				"Ask for 2-3 clips including one freebuild. After sending, ping @Creative Department.",
			},
			Correct: "Ask for 2-3 clips including one freebuild. After sending, ping @Creative Department.",
		},
		{
			ID:   "q7",
			Text: "A Grinder applicant seeks representation.",
			Options: []string{
				"Ask them to include Void in their username. Use the creator code Team.Void in shop. Verify them.",
				"Give a 12 year old grinder directly.",
				"Ignore their request.",
				"Ping higher authority moderators.",
			},
			Correct: "Ask them to include Void in their username. Use the creator code Team.Void in shop. Verify them.",
		},
	})
}
