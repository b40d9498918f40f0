// Package answer synthesizes a natural-language answer from retrieved
// context.
//
// Candidates form an ordered chain: each gets a single attempt (retries
// belong to the embedding client — generation tolerates provider variance
// by moving on), and if every candidate fails the chain degrades to an
// extractive fallback. Synthesize therefore never fails outward.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/text"
)

const (
	// Sentinel the prompt asks models to emit when the answer is absent
	// from context. It is a free-text contract only — nothing parses it.
	notFoundSentinel = "I could not find that information in the documents."

	// fallbackPrefix opens the extractive fallback answer.
	fallbackPrefix = "No grounded answer could be generated."

	// defaultExcerptChars caps the raw-context excerpt appended to the
	// extractive fallback.
	defaultExcerptChars = 400
)

// promptTemplate grounds the model in the retrieved context. Verbatim
// placeholders: question, sentinel, context.
const promptTemplate = `You are a helpful assistant. Answer the question briefly, using only the context provided below. If the answer is not present in the context, reply exactly: %q

Question: %q

Context:
%s

Answer:`

// Provider generates text from a prompt. Implementations are safe for
// concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chain tries candidates in order until one produces usable text.
type Chain struct {
	candidates   []Provider
	excerptChars int
	logger       log.Logger
}

// NewChain builds a synthesis chain. An empty candidate list is valid:
// every question then receives the extractive fallback.
func NewChain(logger log.Logger, candidates ...Provider) *Chain {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Chain{
		candidates:   candidates,
		excerptChars: defaultExcerptChars,
		logger:       logger,
	}
}

// Synthesize produces an answer grounded in contextText. It always returns
// usable text:
//   - empty context short-circuits to the fixed no-answer message without
//     spending provider calls;
//   - the first candidate returning non-empty text wins;
//   - if every candidate fails, the result is the fallback prefix plus an
//     excerpt of the raw retrieved context.
func (c *Chain) Synthesize(ctx context.Context, contextText, question string) string {
	trimmedContext := strings.TrimSpace(contextText)
	if trimmedContext == "" {
		return notFoundSentinel
	}

	prompt := fmt.Sprintf(promptTemplate, notFoundSentinel, question, trimmedContext)

	for _, candidate := range c.candidates {
		generated, err := candidate.Generate(ctx, prompt)
		if err != nil {
			c.logger.Warn("generation candidate failed, advancing",
				"provider", candidate.Name(), "error", err)
			continue
		}
		if answer := strings.TrimSpace(generated); answer != "" {
			c.logger.Debug("answer synthesized", "provider", candidate.Name(), "length", len(answer))
			return answer
		}
		c.logger.Warn("generation candidate returned empty text, advancing",
			"provider", candidate.Name())
	}

	return fallbackPrefix + " Closest retrieved content: " + text.Truncate(trimmedContext, c.excerptChars)
}
