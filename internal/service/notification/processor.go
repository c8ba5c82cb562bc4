// Package notification turns queued delivery tasks into emails.
package notification

import (
	"context"
	"errors"
	"fmt"

	"fastfeet/internal/logx"
	"fastfeet/internal/mail"
	"fastfeet/internal/notify"
)

// ErrUndeliverable marks a task that will never succeed, however often it is retried.
var ErrUndeliverable = errors.New("notification: undeliverable")

// Renderer builds the email for a task.
type Renderer interface {
	Render(t notify.Task) (mail.Message, error)
}

// Processor handles notification tasks consumed by the worker.
type Processor struct {
	renderer Renderer
	sender   mail.Sender
	logger   logx.Logger
	factory  *actionFactory
}

// NewProcessor creates a Processor.
func NewProcessor(renderer Renderer, sender mail.Sender, logger logx.Logger) *Processor {
	p := &Processor{renderer: renderer, sender: sender, logger: logger}
	p.factory = newActionFactory(p.onNewDelivery, p.onCancelDelivery)
	return p
}

// Handle processes a single task. Unknown tasks are ignored.
func (p *Processor) Handle(ctx context.Context, t notify.Task) error {
	fn, ok := p.factory.get(t.Name)
	if !ok {
		p.logger.Warn("notification task ignored", logx.String("task", string(t.Name)))
		return nil
	}
	return fn(ctx, t)
}

func (p *Processor) onNewDelivery(ctx context.Context, t notify.Task) error {
	return p.send(ctx, t)
}

func (p *Processor) onCancelDelivery(ctx context.Context, t notify.Task) error {
	if t.Payload.CanceledAt == nil {
		return fmt.Errorf("%w: cancel task for delivery %d without cancellation date", ErrUndeliverable, t.Payload.DeliveryID)
	}
	return p.send(ctx, t)
}

func (p *Processor) send(ctx context.Context, t notify.Task) error {
	msg, err := p.renderer.Render(t)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	if msg.ToAddr == "" {
		return fmt.Errorf("%w: delivery %d has no deliveryman email", ErrUndeliverable, t.Payload.DeliveryID)
	}
	if err := p.sender.Send(ctx, msg); err != nil {
		if mail.IsPermanent(err) {
			return fmt.Errorf("%w: %v", ErrUndeliverable, err)
		}
		return fmt.Errorf("send %s mail: %w", t.Name, err)
	}
	p.logger.Info("notification sent",
		logx.String("task", string(t.Name)),
		logx.Int64("delivery_id", t.Payload.DeliveryID),
		logx.String("to", msg.ToAddr),
	)
	return nil
}
