// Package conversation builds the ordered, role-tagged message sequence fed
// to the LLM capability. It is a pure transformation of persisted interview
// state: the same profile and turns always produce the same output.
package conversation

import (
	"fmt"
	"sort"
	"strings"

	"go-interview-worker/internal/domain"
)

// AnswerPlaceholder stands in for a missing answer so the model always sees
// a structurally consistent alternating pattern instead of a silent gap.
const AnswerPlaceholder = "SKIP"

const systemTemplate = `You are a professional AI interviewer. Ask only one interview question at a time based on the job description and candidate resume. Do not list multiple questions. Wait for the candidate's answer before asking the next question.

Job Description:
%s

Candidate Resume:
%s

This is question %d of %d.`

const closingInstruction = `The question budget is exhausted. Instead of asking another question, thank the candidate, give a short closing note for the interview, and tell them their results will follow.`

// Build assembles the prompt for the next LLM call: a system instruction
// with document context and turn-budget framing, then one model-role entry
// per asked question interleaved with one user-role entry per answer, in
// question_id order.
//
// closing selects the closing-note instruction for the final turn; the
// message structure is identical either way.
func Build(profile *domain.CandidateProfile, turns []domain.QuestionAnswer, maxQuestions int, closing bool) (string, []domain.Message) {
	ordered := make([]domain.QuestionAnswer, len(turns))
	copy(ordered, turns)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].QuestionID < ordered[j].QuestionID
	})

	questionNumber := 0
	history := make([]domain.Message, 0, 2*len(ordered))
	for _, turn := range ordered {
		if turn.QuestionText == "" {
			continue
		}
		questionNumber++
		history = append(history, domain.Message{
			Role:    domain.RoleModel,
			Content: turn.QuestionText,
		})

		answer := AnswerPlaceholder
		if turn.AnswerText != nil && strings.TrimSpace(*turn.AnswerText) != "" {
			answer = *turn.AnswerText
		}
		history = append(history, domain.Message{
			Role:    domain.RoleUser,
			Content: answer,
		})
	}

	jdText := ""
	resumeText := ""
	if profile != nil {
		jdText = strings.TrimSpace(profile.DocumentText(domain.DocumentKindJD))
		resumeText = strings.TrimSpace(profile.DocumentText(domain.DocumentKindResume))
	}

	system := fmt.Sprintf(systemTemplate, jdText, resumeText, questionNumber+1, maxQuestions)
	if closing {
		system += "\n\n" + closingInstruction
	}

	return system, history
}
