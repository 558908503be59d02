package domain

import "context"

//go:generate mockgen -source=notifier.go -destination=../mocks/mock_notifier.go -package=mocks
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NopNotifier drops every alert.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Alert) error { return nil }
