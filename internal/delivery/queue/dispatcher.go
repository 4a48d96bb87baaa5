// Package queue is the worker's delivery layer: it receives raw task
// messages off the transport, validates the envelope, and routes each one to
// the handler registered for its action tag. A failing handler never brings
// the receive loop down.
package queue

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
	"go-interview-worker/pkg/logger"
)

type HandlerFunc func(ctx context.Context, msg *domain.TaskMessage) error

type Dispatcher struct {
	validate *validator.Validate
	handlers map[string]HandlerFunc
}

func NewDispatcher(validate *validator.Validate) *Dispatcher {
	return &Dispatcher{
		validate: validate,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds an action tag to its handler. Exactly one handler per tag.
func (d *Dispatcher) Register(actionType string, handler HandlerFunc) {
	d.handlers[actionType] = handler
}

// Dispatch processes one raw message body. Bad envelopes and unknown action
// tags are logged and dropped; handler errors and panics are contained here
// so the caller's receive loop keeps running.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) {
	var msg domain.TaskMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Log.Warn("dropping undecodable task message", "error", err)
		return
	}
	if err := d.validate.Struct(&msg); err != nil {
		logger.Log.Warn("dropping invalid task envelope",
			"action_type", msg.ActionType,
			"correlation_id", msg.CorrelationID,
			"error", err,
		)
		return
	}

	handler, ok := d.handlers[msg.ActionType]
	if !ok {
		logger.Log.Warn("no handler for action_type",
			"action_type", msg.ActionType,
			"correlation_id", msg.CorrelationID,
		)
		return
	}

	logger.Log.Info("handling task message",
		"action_type", msg.ActionType,
		"correlation_id", msg.CorrelationID,
		"user_id", msg.UserID,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("handler panicked",
				"action_type", msg.ActionType,
				"correlation_id", msg.CorrelationID,
				"panic", r,
			)
		}
	}()

	if err := handler(ctx, &msg); err != nil {
		if apperror.IsKind(err, apperror.KindDuplicate) {
			logger.Log.Info("task was an idempotent replay",
				"action_type", msg.ActionType,
				"correlation_id", msg.CorrelationID,
				"detail", err.Error(),
			)
			return
		}
		logger.Log.Error("handler failed",
			"action_type", msg.ActionType,
			"correlation_id", msg.CorrelationID,
			"user_id", msg.UserID,
			"error", err,
		)
	}
}
