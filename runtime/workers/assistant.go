package workers

import (
	"context"
	"log/slog"
	"time"

	"campus-desk/assistant"
	"campus-desk/domain/event"
	"campus-desk/engine"
)

// AssistantWorker composes scripted replies off the engine loop. The engine
// publishes a prompt, the worker waits the typing delay, then dispatches the
// reply back as a regular command so the loop re-validates the session.
type AssistantWorker struct {
	log     *slog.Logger
	prompts <-chan event.AssistantPrompt
	desk    *engine.Engine
	scripts *assistant.Assistant
	delay   time.Duration
}

func NewAssistantWorker(log *slog.Logger, desk *engine.Engine,
	scripts *assistant.Assistant, delay time.Duration) *AssistantWorker {
	return &AssistantWorker{
		log:     log,
		prompts: desk.Prompts(),
		desk:    desk,
		scripts: scripts,
		delay:   delay,
	}
}

func (w *AssistantWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping assistant worker")
			return nil
		case prompt := <-w.prompts:
			if w.delay > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(w.delay):
				}
			}
			reply := w.scripts.Respond(prompt.Content, prompt.Turn)
			err := w.desk.Dispatch(ctx, engine.AssistantReply{
				ID:       prompt.ConnID,
				Identity: prompt.Identity,
				Content:  reply,
			})
			if err != nil {
				w.log.Warn("Failed to dispatch assistant reply", "conn", prompt.ConnID, "error", err)
			}
		}
	}
}
