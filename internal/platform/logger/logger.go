package logger

import (
	"context"
	"os"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingConsole Encoding = "console"
)

type Config struct {
	Level    string
	Encoding string
	App      string
}

// ParseEncoding normaliza LOG_ENCODING (default json).
func ParseEncoding(s string) Encoding {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console", "text":
		return EncodingConsole
	default:
		return EncodingJSON
	}
}

// New construye un *zap.Logger a stdout.
// Un nivel inválido cae a info en vez de fallar el arranque.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(strings.TrimSpace(cfg.Level))); err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	switch ParseEncoding(cfg.Encoding) {
	case EncodingConsole:
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)

	l := zap.New(core, zap.AddCaller())
	if app := strings.TrimSpace(cfg.App); app != "" {
		l = l.With(zap.String("app", app))
	}
	return l, nil
}

// WithRequestID enriquece el logger con el request id que pone chi.
func WithRequestID(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	if ctx == nil {
		return base
	}
	if reqID := chimw.GetReqID(ctx); reqID != "" {
		return base.With(zap.String("request_id", reqID))
	}
	return base
}

// OrNop evita chequeos de nil en cada componente.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
