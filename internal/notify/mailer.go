package notify

import (
	"context"
	"go.uber.org/zap"
)

type Message struct {
	From    string
	To      string // user id; address lookup belongs to the identity provider
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer records messages instead of delivering them.
type LogMailer struct {
	Log *zap.Logger
}

func (l LogMailer) Send(_ context.Context, m Message) error {
	l.Log.Info("mail queued",
		zap.String("from", m.From),
		zap.String("to", m.To),
		zap.String("subject", m.Subject))
	return nil
}
