package notification

import (
	"context"

	"fastfeet/internal/domain"
	"fastfeet/internal/notify"
)

type actionFunc func(context.Context, notify.Task) error

type actionFactory struct {
	byTask map[domain.TaskName]actionFunc
}

func newActionFactory(onNewDelivery, onCancelDelivery actionFunc) *actionFactory {
	return &actionFactory{
		byTask: map[domain.TaskName]actionFunc{
			domain.TaskNewDelivery:    onNewDelivery,
			domain.TaskCancelDelivery: onCancelDelivery,
		},
	}
}

func (f *actionFactory) get(name domain.TaskName) (actionFunc, bool) {
	fn, ok := f.byTask[name]
	return fn, ok
}
