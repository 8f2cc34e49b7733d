// Package chat builds prompts with memory context and produces
// companion replies.
package chat

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/sahara-wellness/backend/internal/pkg/service/api"
	"github.com/sahara-wellness/backend/internal/pkg/summary"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

const fallbackReply = "Sorry, I couldn't respond right now."

type (
	// Generator produces a reply for a prompt
	Generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	// UserStore keeps per-user conversation state
	UserStore interface {
		StartConversation(ctx context.Context, userID string) (string /*memory summary*/, error)
	}

	// Summarizer queues background memory updates
	Summarizer interface {
		Submit(t summary.Task)
	}

	// Service handles one chat exchange
	Service struct {
		users      UserStore
		generator  Generator
		summarizer Summarizer
	}
)

// NewService creates Service instance
func NewService(users UserStore, generator Generator, summarizer Summarizer) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users is nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer is nil")
	}
	return &Service{users: users, generator: generator, summarizer: summarizer}, nil
}

// Reply produces the companion's answer for one user message. A first
// call without a user ID creates the user and returns the generated ID.
// Generation failures degrade to fallback content, never to an error.
func (s *Service) Reply(ctx context.Context, userID, message string) (*api.ChatReply, error) {
	ctx, span := utils.StartSpan(ctx, "chat.Reply")
	defer span.End()

	created := false
	if userID == "" {
		userID = ulid.Make().String()
		created = true
	}

	memory, err := s.users.StartConversation(ctx, userID)
	if err != nil {
		// chat must keep working without the user doc
		log.Ctx(ctx).Warn().Err(err).Str("user", userID).Msg("can't access user doc")
		memory = ""
	}

	reply, err := s.generator.Generate(ctx, buildPrompt(memory, message))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("generation failed, using fallback reply")
		reply = fallbackReply
	} else {
		s.summarizer.Submit(summary.Task{UserID: userID, PrevMemory: memory,
			UserMessage: message, Reply: reply})
	}

	res := &api.ChatReply{Reply: reply}
	if created {
		res.UserID = userID
	}
	return res, nil
}

func buildPrompt(memory, message string) string {
	systemPrompt := "You are Aastha, a compassionate and warm AI companion. Keep replies concise (2-3 sentences) " +
		"using reflect-validate-question structure."
	if memory == "" {
		memory = "This is the user's first conversation."
	}
	return fmt.Sprintf("%s\n\nREMEMBER THIS from past conversations: %s\n\nUser: %s\nAastha:",
		systemPrompt, memory, message)
}
