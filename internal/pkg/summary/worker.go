// Package summary updates a user's conversation memory in the
// background. Failures are logged and swallowed, never surfaced to the
// request that queued the update.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type (
	// Generator produces the condensed memory sentence
	Generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	// Saver persists the updated memory for a user
	Saver interface {
		SaveMemorySummary(ctx context.Context, userID, summary string) error
	}

	// Task is one queued memory update
	Task struct {
		UserID      string
		PrevMemory  string
		UserMessage string
		Reply       string
	}

	// Data keeps worker configuration
	Data struct {
		Generator Generator
		Saver     Saver
		QueueSize int
		Timeout   time.Duration
	}

	// Worker processes memory update tasks one at a time.
	// Updates for the same user are not coalesced: two conversations
	// racing for one user resolve by last write wins.
	Worker struct {
		data  *Data
		tasks chan Task
	}
)

// StartWorker starts the processing loop. The returned channel closes
// after the loop drains and exits on ctx cancellation.
func StartWorker(ctx context.Context, data *Data) (*Worker, <-chan struct{}, error) {
	if data.Generator == nil {
		return nil, nil, fmt.Errorf("no generator")
	}
	if data.Saver == nil {
		return nil, nil, fmt.Errorf("no saver")
	}
	if data.QueueSize <= 0 {
		data.QueueSize = 100
	}
	if data.Timeout <= 0 {
		data.Timeout = time.Second * 30
	}
	w := &Worker{data: data, tasks: make(chan Task, data.QueueSize)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.serviceLoop(ctx)
	}()
	return w, done, nil
}

// Submit queues a task without blocking. A full queue drops the task
// with a warning - memory updates are best effort.
func (w *Worker) Submit(t Task) {
	select {
	case w.tasks <- t:
	default:
		log.Warn().Str("user", t.UserID).Msg("memory update queue full, dropping task")
	}
}

func (w *Worker) serviceLoop(ctx context.Context) {
	log.Ctx(ctx).Info().Msg("Starting memory summary worker")
	for {
		select {
		case t := <-w.tasks:
			w.process(ctx, t)
		case <-ctx.Done():
			log.Info().Msg("Stopped memory summary worker")
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, t Task) {
	ctx, cancelF := context.WithTimeout(ctx, w.data.Timeout)
	defer cancelF()
	log.Ctx(ctx).Debug().Str("user", t.UserID).Msg("updating memory summary")

	newSummary, err := w.data.Generator.Generate(ctx, summaryPrompt(t))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user", t.UserID).Msg("memory summarization failed")
		return
	}
	if newSummary == "" {
		log.Ctx(ctx).Warn().Str("user", t.UserID).Msg("memory summarization returned empty result")
		return
	}
	if err := w.data.Saver.SaveMemorySummary(ctx, t.UserID, newSummary); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user", t.UserID).Msg("can't save memory summary")
		return
	}
	log.Ctx(ctx).Debug().Str("user", t.UserID).Msg("memory summary saved")
}

func summaryPrompt(t Task) string {
	return fmt.Sprintf("You are a concise memory summarizer. From the PREVIOUS MEMORY and the LATEST EXCHANGE, "+
		"produce a ONE-SENTENCE summary (15-25 words) capturing the key themes, user's emotional state, "+
		"or important facts the companion should remember. Output only the sentence.\n\n"+
		"PREVIOUS MEMORY: %s\n"+
		"LATEST EXCHANGE:\nUser: %s\nAastha: %s\n\n"+
		"UPDATED ONE-SENTENCE SUMMARY:", t.PrevMemory, t.UserMessage, t.Reply)
}
