package rag

import (
	"context"
	"fmt"
	"strings"

	"hetman-rag/internal/contextutil"
	"hetman-rag/internal/llm"
	"hetman-rag/internal/vectorstore"
)

// NoAnswerSentinel is the fixed phrase the model is instructed to emit when
// the supplied context is insufficient. A degraded answer is always this
// explicit, visible string, never an empty one.
const NoAnswerSentinel = "Немає точної відповіді"

// promptTemplate is the single fixed instruction prompt: answer only from
// the numbered context, keep it to 1-3 sentences, cite sources inline with
// bracketed position numbers, fall back to the sentinel when unsure.
const promptTemplate = `Ти — експерт з історії України. Використовуй ТІЛЬКИ наведений контекст.
Відповідай коротко (1-3 речення), з номерами джерел [1], [2] тощо.
Якщо не впевнений — скажи: "%s".

Запит: %s

Контекст:
%s

Відповідь:`

// Generator is the external generation service boundary.
type Generator interface {
	Complete(ctx context.Context, prompt string, params llm.ChatParams) (string, error)
}

// Synthesizer assembles a grounded prompt from retrieved chunks and turns
// the generation service output into a cited answer.
type Synthesizer struct {
	generator Generator
	params    llm.ChatParams
}

// NewSynthesizer creates a synthesizer with deterministic-leaning sampling
// settings (low temperature, bounded output).
func NewSynthesizer(generator Generator) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		params: llm.ChatParams{
			Temperature: 0.2,
			MaxTokens:   200,
		},
	}
}

// BuildContext renders the numbered context block, one entry per chunk in
// input order: "[<position>] <chunk text>".
func BuildContext(chunks []vectorstore.Candidate) string {
	lines := make([]string, len(chunks))
	for i, chunk := range chunks {
		lines[i] = fmt.Sprintf("[%d] %s", i+1, chunk.Text)
	}
	return strings.Join(lines, "\n")
}

// GenerateResponse produces the answer text for a query grounded in the
// given chunks. Any generation service error is converted into a visible
// string embedding the error detail; this method never fails past its own
// boundary and callers always receive a string.
func (s *Synthesizer) GenerateResponse(ctx context.Context, query string, chunks []vectorstore.Candidate) string {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := fmt.Sprintf(promptTemplate, NoAnswerSentinel, query, BuildContext(chunks))

	answer, err := s.generator.Complete(ctx, prompt, s.params)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return fmt.Sprintf("Помилка LLM: %v", err)
	}
	return strings.TrimSpace(answer)
}

// Sources renders the displayed citation list for the same chunks, 1-based,
// in the same order used by BuildContext. Position numbers in the answer and
// in this list stay in lockstep because both derive from input order.
func Sources(chunks []vectorstore.Candidate) []string {
	sources := make([]string, len(chunks))
	for i, chunk := range chunks {
		sources[i] = fmt.Sprintf("[%d] %s (чанк %d)", i+1, chunk.Meta.DocName, chunk.Meta.ChunkNumber)
	}
	return sources
}
