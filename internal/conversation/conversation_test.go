package conversation_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-interview-worker/internal/conversation"
	"go-interview-worker/internal/domain"
)

func strPtr(s string) *string { return &s }

func sampleProfile() *domain.CandidateProfile {
	return &domain.CandidateProfile{
		ID:           7,
		Username:     "vijay",
		JDText:       strPtr("Cloud Solutions Architect, Azure, GenAI."),
		ResumeText:   strPtr("10+ years of cloud experience."),
		JDStatus:     domain.DocStatusCompleted,
		ResumeStatus: domain.DocStatusCompleted,
	}
}

func TestBuildInterleavesTurnsInOrder(t *testing.T) {
	turns := []domain.QuestionAnswer{
		{QuestionID: 2, QuestionText: "Q2", AnswerText: strPtr("A2")},
		{QuestionID: 1, QuestionText: "Q1", AnswerText: strPtr("A1")},
		{QuestionID: 3, QuestionText: "Q3"},
	}

	system, history := conversation.Build(sampleProfile(), turns, 5, false)

	require.Len(t, history, 6)
	assert.Equal(t, domain.Message{Role: domain.RoleModel, Content: "Q1"}, history[0])
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "A1"}, history[1])
	assert.Equal(t, domain.Message{Role: domain.RoleModel, Content: "Q2"}, history[2])
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "A2"}, history[3])
	assert.Equal(t, domain.Message{Role: domain.RoleModel, Content: "Q3"}, history[4])
	// Unanswered turn keeps the alternating shape via the placeholder.
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: conversation.AnswerPlaceholder}, history[5])

	assert.Contains(t, system, "Cloud Solutions Architect")
	assert.Contains(t, system, "10+ years of cloud experience.")
	assert.Contains(t, system, "question 4 of 5")
}

func TestBuildDeterministic(t *testing.T) {
	turns := []domain.QuestionAnswer{
		{QuestionID: 1, QuestionText: "Q1", AnswerText: strPtr("A1")},
		{QuestionID: 2, QuestionText: "Q2"},
	}

	firstSystem, firstHistory := conversation.Build(sampleProfile(), turns, 3, false)
	for i := 0; i < 10; i++ {
		system, history := conversation.Build(sampleProfile(), turns, 3, false)
		assert.Equal(t, firstSystem, system)
		assert.Equal(t, firstHistory, history)
	}
}

func TestBuildIgnoresUntrustedDocuments(t *testing.T) {
	profile := sampleProfile()
	profile.JDStatus = domain.DocStatusFailed
	profile.ResumeStatus = domain.DocStatusPending

	system, _ := conversation.Build(profile, nil, 5, false)

	// Failed or pending documents contribute no content to the prompt.
	assert.NotContains(t, system, "Cloud Solutions Architect")
	assert.NotContains(t, system, "10+ years")
	assert.Contains(t, system, "question 1 of 5")
}

func TestBuildClosingInstruction(t *testing.T) {
	regular, _ := conversation.Build(sampleProfile(), nil, 5, false)
	closing, _ := conversation.Build(sampleProfile(), nil, 5, true)

	assert.NotContains(t, regular, "closing note")
	assert.Contains(t, closing, "closing note")
	// The closing instruction only appends to the system message; the
	// structure is otherwise identical.
	assert.True(t, strings.HasPrefix(closing, regular), fmt.Sprintf("closing system %q should extend regular %q", closing, regular))
}

func TestBuildSkipsTurnsWithoutQuestionText(t *testing.T) {
	turns := []domain.QuestionAnswer{
		{QuestionID: 1, QuestionText: "Q1", AnswerText: strPtr("A1")},
		{QuestionID: 2, QuestionText: ""},
	}

	system, history := conversation.Build(sampleProfile(), turns, 5, false)

	require.Len(t, history, 2)
	assert.Contains(t, system, "question 2 of 5")
}

func TestBuildNilProfile(t *testing.T) {
	system, history := conversation.Build(nil, nil, 5, false)
	assert.Empty(t, history)
	assert.Contains(t, system, "question 1 of 5")
}
