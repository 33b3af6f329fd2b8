// Package answer turns a free-text question into a grounded reply by
// embedding it, retrieving the most similar chunks and conditioning the
// generation model on them.
package answer

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/prompts"

	"swasthya/src/index"
	"swasthya/src/log"
)

// FallbackAnswer is returned for every failure on the answering path. A
// chat or SMS user always receives some reply.
const FallbackAnswer = "An error occurred while processing your question. Please try again."

// Embedder vectorizes the incoming question with the same model used at
// ingestion time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the chunks most similar to a query vector.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32) ([]index.Entry, error)
}

// Generator invokes the language-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer assembles a grounded prompt from retrieved chunks and the
// question. Failures never escape Answer; they degrade to FallbackAnswer.
type Synthesizer struct {
	embedder  Embedder
	retriever Retriever
	generator Generator
	timeout   time.Duration
	template  prompts.PromptTemplate
}

// NewSynthesizer wires the answering path. timeout bounds each backend call
// so a hung model cannot hang the request.
func NewSynthesizer(embedder Embedder, retriever Retriever, generator Generator, timeout time.Duration) *Synthesizer {
	return &Synthesizer{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		timeout:   timeout,
		template: prompts.PromptTemplate{
			Template:       answerTemplate,
			InputVariables: []string{"context", "question"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
	}
}

// Answer produces a reply for the question. It never returns an error.
func (s *Synthesizer) Answer(ctx context.Context, question string) string {
	reply, err := s.answer(ctx, question)
	if err != nil {
		log.Error(err, "answering path failed, replying with fallback", "question", question)
		return FallbackAnswer
	}

	return reply
}

func (s *Synthesizer) answer(ctx context.Context, question string) (string, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vector, err := s.embedder.Embed(embedCtx, question)
	if err != nil {
		return "", err
	}

	entries, err := s.retriever.Retrieve(ctx, vector)
	if err != nil {
		return "", err
	}

	prompt, err := s.template.Format(map[string]any{
		"context":  contextBlock(entries),
		"question": question,
	})
	if err != nil {
		return "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.generator.Generate(genCtx, prompt)
}

// contextBlock concatenates retrieved chunk texts in similarity order,
// separated by a blank line.
func contextBlock(entries []index.Entry) string {
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Text
	}
	return strings.Join(texts, "\n\n")
}
