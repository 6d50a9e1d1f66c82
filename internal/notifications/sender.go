package notifications

import (
	"context"
	"errors"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

// LogSender records outgoing mail on the service log instead of a mail
// provider. It keeps local and test environments free of real delivery
// while the rest of the pipeline behaves as in production.
type LogSender struct {
	logg *logger.Logger
	from string
}

func NewLogSender(cfg config.EmailConfig, logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &LogSender{logg: logg, from: cfg.DefaultFrom}, nil
}

func (s *LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	fields := map[string]any{
		"from":      s.from,
		"recipient": recipient,
		"subject":   subject,
		"body_len":  len(body),
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "email dispatched")
	return nil
}
