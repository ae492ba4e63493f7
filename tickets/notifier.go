package tickets

import (
	"github.com/rs/zerolog"
)

// Notifier shows short user-facing notices.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(l zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

func (n *LogNotifier) Success(msg string) {
	n.log.Info().Str("notice", "success").Msg(msg)
}

func (n *LogNotifier) Error(msg string) {
	n.log.Error().Str("notice", "error").Msg(msg)
}
