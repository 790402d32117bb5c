package decal

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. pretty selects the colored development
// encoder; otherwise the JSON production encoder is used. Unknown levels keep
// the config's default level.
func NewLogger(level string, pretty bool) (*zap.Logger, error) {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if lvl, ok := parseLevel(level); ok {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build(
		zap.AddStacktrace(zapcore.FatalLevel), // Only add stack traces for Fatal
	)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("decal"), nil
}

func parseLevel(lvl string) (zapcore.Level, bool) {
	switch lvl {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// stickerFields returns the standard log fields for a sticker.
func stickerFields(s *Sticker) []zap.Field {
	if s == nil {
		return nil
	}
	return []zap.Field{
		zap.String("sticker", s.ID),
		zap.Stringer("kind", s.Kind),
	}
}
