package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	appCtx "github.com/baechuer/real-time-ressys/services/reset-service/internal/pkg/context"
)

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT") // "json" or "console"
	if format == "" {
		format = "console"
	}

	if format == "json" {
		Logger = zerolog.New(w).With().Timestamp().Str("service", "reset-service").Logger().Level(level)
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger().Level(level)
	}

	// set global
	zlog.Logger = Logger
}

// Ctx returns a logger carrying the request id and trace id present on ctx.
func Ctx(ctx context.Context) *zerolog.Logger {
	reqID := appCtx.GetRequestID(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if reqID == "" && !sc.IsValid() {
		return &Logger
	}

	c := Logger.With()
	if reqID != "" {
		c = c.Str("request_id", reqID)
	}
	if sc.IsValid() {
		c = c.Str("trace_id", sc.TraceID().String())
	}
	l := c.Logger()
	return &l
}
