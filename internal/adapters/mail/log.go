package mail

import (
	"context"

	"go.uber.org/zap"

	"petlink/internal/domain/reminders"
)

// LogSender no envía nada: deja el mail en el log (modo dev).
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger.Named("mail")}
}

func (s *LogSender) Send(ctx context.Context, msg reminders.Message) error {
	if err := checkHeaders(msg); err != nil {
		return err
	}
	s.logger.Info("mail (log backend)",
		zap.String("from", msg.From),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
