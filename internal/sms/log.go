package sms

import (
	"context"
	"log/slog"
)

// Sender delivers a bulk send. *Service is the real implementation.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
}

// LogSender logs sends instead of delivering them. Useful for dry runs.
type LogSender struct {
	logger *slog.Logger
	cfg    Config
}

// NewLogSender creates a LogSender. If logger is nil, slog.Default() is used.
func NewLogSender(logger *slog.Logger, cfg Config) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, cfg: cfg}
}

func (s *LogSender) Send(_ context.Context, req SendRequest) (*SendResult, error) {
	if req.SourceAddr == "" {
		req.SourceAddr = s.cfg.DefaultSenderID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.logger.Info("sms.LogSender",
		"source_addr", req.SourceAddr,
		"recipients", len(req.Recipients),
		"segments", Segments(req.Message),
		"message", req.Message,
	)
	return &SendResult{
		Successful: true,
		Message:    "logged",
		Valid:      len(req.Recipients),
	}, nil
}

var (
	_ Sender = (*Service)(nil)
	_ Sender = (*LogSender)(nil)
)
