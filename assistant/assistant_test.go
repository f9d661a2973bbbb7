package assistant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssistant_KeywordReplyInEnglish(t *testing.T) {
	req := require.New(t)

	// Given a responder with room for several turns
	scripts := New(3)

	// When an English question mentions a known keyword
	answer := scripts.Respond("How do I create a new task for my homework?", 1)

	// Then the English task script is picked
	req.Equal("Would you like to create a new task or check your pending ones?", answer)
}

func TestAssistant_KeywordReplyInPortuguese(t *testing.T) {
	req := require.New(t)

	// Given a responder with room for several turns
	scripts := New(3)

	// When a Portuguese question mentions a known keyword
	answer := scripts.Respond("Como faço para verificar o prazo da minha tarefa de matemática?", 1)

	// Then a Portuguese script is picked
	req.Contains(answer, "tarefa")
}

func TestAssistant_FallbackOnUnknownQuestion(t *testing.T) {
	req := require.New(t)

	// Given a responder with room for several turns
	scripts := New(3)

	// When the question matches no keyword
	answer := scripts.Respond("What time does the cafeteria open today?", 1)

	// Then the fallback script is picked
	req.Equal(`Sorry, I did not understand. Try words like "task", "deadline" or "subject".`, answer)
}

func TestAssistant_HandoffOnFinalTurn(t *testing.T) {
	req := require.New(t)

	// Given a responder with a budget of two turns
	scripts := New(2)

	// When the final budgeted turn arrives, keyword or not
	answer := scripts.Respond("I need help with a task deadline please", 2)

	// Then the hand-off script wins over every keyword
	req.Equal("This was our last automated interaction. A human operator has been notified.", answer)

	// And later turns keep returning the hand-off script
	req.Equal(answer, scripts.Respond("anything at all", 5))
}

func TestAssistant_KeywordMatchIsCaseInsensitive(t *testing.T) {
	req := require.New(t)

	scripts := New(3)

	answer := scripts.Respond("WHEN IS MY ASSIGNMENT DUE", 1)

	req.Equal("Would you like to create a new task or check your pending ones?", answer)
}
