// Package notify queues fire-and-forget notification tasks for the worker.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fastfeet/internal/domain"
)

// ErrQueueFull is returned when a task was dropped because the outbound queue is saturated.
var ErrQueueFull = errors.New("notify: queue full")

// Task is one unit of work for the worker.
type Task struct {
	Name    domain.TaskName
	Payload domain.DeliverySnapshot
}

// Dispatcher enqueues tasks without waiting for them to run. Callers treat a
// returned error as informational; it never fails the originating operation.
type Dispatcher interface {
	Enqueue(ctx context.Context, t Task) error
}

// Envelope is the wire form of a Task.
type Envelope struct {
	Task    domain.TaskName `json:"task"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serialises a task into its envelope.
func Encode(t Task) ([]byte, error) {
	if !t.Name.Valid() {
		return nil, fmt.Errorf("notify: unknown task %q", t.Name)
	}
	payload, err := json.Marshal(t.Payload)
	if err != nil {
		return nil, fmt.Errorf("notify: encode payload: %w", err)
	}
	return json.Marshal(Envelope{Task: t.Name, Payload: payload})
}

// Decode parses an envelope back into a Task.
func Decode(b []byte) (Task, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Task{}, fmt.Errorf("notify: decode envelope: %w", err)
	}
	if !env.Task.Valid() {
		return Task{}, fmt.Errorf("notify: unknown task %q", env.Task)
	}
	var t Task
	t.Name = env.Task
	if err := json.Unmarshal(env.Payload, &t.Payload); err != nil {
		return Task{}, fmt.Errorf("notify: decode payload: %w", err)
	}
	return t, nil
}

type nop struct{}

func (nop) Enqueue(context.Context, Task) error { return nil }

// Nop returns a Dispatcher that discards every task.
func Nop() Dispatcher { return nop{} }
