package generate

import (
	"context"
	"fmt"
	"log"
	"time"

	"myfolio-chatbot-be/pkg/llm"
	"myfolio-chatbot-be/pkg/rag/memory"
	"myfolio-chatbot-be/pkg/rag/prompt"
	"myfolio-chatbot-be/pkg/rag/state"
)

// GenerationError signals that the completion capability failed or timed out.
// The request fails as a whole; conversation memory and the chat log are
// never updated for a failed generation.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// LogSink is the append-only external chat log. Append is best-effort: an
// error is logged by the caller and never surfaced to the user.
type LogSink interface {
	Append(ctx context.Context, question, answer, userID, category string, documents []state.Document) error
}

// Generator produces the final answer for a request: it assembles a prompt,
// invokes the completion capability once, and on success appends the
// (question, answer) pair to the user's conversation memory and to the chat
// log.
type Generator struct {
	llmProvider llm.LLMProvider
	memoryStore memory.Store
	logSink     LogSink
	timeout     time.Duration
	logger      *log.Logger
}

// New builds a generator. timeout bounds each completion call; zero leaves
// the caller's deadline as is.
func New(llmProvider llm.LLMProvider, memoryStore memory.Store, logSink LogSink, timeout time.Duration, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		memoryStore: memoryStore,
		logSink:     logSink,
		timeout:     timeout,
		logger:      logger,
	}
}

// Generate answers a retrieval-backed request. Empty s.Documents is valid:
// the instruction set's refusal contract covers the no-information case.
func (g *Generator) Generate(ctx context.Context, s *state.RequestState) error {
	history, err := g.memoryStore.Get(ctx, s.UserID)
	if err != nil {
		return &GenerationError{Err: fmt.Errorf("memory read: %w", err)}
	}

	messages := prompt.AnswerMessages(s, history)
	return g.complete(ctx, s, messages)
}

// Fallback answers a request without documents using the general-knowledge
// instruction set.
func (g *Generator) Fallback(ctx context.Context, s *state.RequestState) error {
	history, err := g.memoryStore.Get(ctx, s.UserID)
	if err != nil {
		return &GenerationError{Err: fmt.Errorf("memory read: %w", err)}
	}

	messages := prompt.FallbackMessages(s, history)
	return g.complete(ctx, s, messages)
}

func (g *Generator) complete(ctx context.Context, s *state.RequestState, messages []llm.Message) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	generation, err := g.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.0))
	if err != nil {
		return &GenerationError{Err: err}
	}

	// Side effects happen only after a successful completion, so a failed
	// generation leaves memory and log untouched.
	if err := g.memoryStore.Append(ctx, s.UserID,
		memory.Turn{Role: memory.RoleUser, Content: s.Question},
		memory.Turn{Role: memory.RoleAssistant, Content: generation},
	); err != nil {
		return &GenerationError{Err: fmt.Errorf("memory append: %w", err)}
	}

	if err := g.logSink.Append(ctx, s.Question, generation, s.UserID, string(s.Category), s.Documents); err != nil {
		// Best-effort: the log never blocks nor fails the answer.
		g.logger.Printf("[GENERATE] Chat log append failed (ignored): %v", err)
	}

	s.Generation = generation
	return nil
}
