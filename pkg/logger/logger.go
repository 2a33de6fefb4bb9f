// Package logger es el logger estructurado del servicio del dashboard Greenbox
// y de cmd/seed. Cada línea lleva el servicio ("service") y, en los loggers hijos,
// el componente que la emite ("component": dashboard, http, amqp, seed).
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger.
type Config struct {
	Env     string    // development: consola legible; cualquier otro valor: JSON
	Level   string    // LOG_LEVEL: trace, debug, info, warn, error; inválido o vacío = info
	Service string    // APP_NAME; se omite si está vacío
	Output  io.Writer // opcional; por defecto os.Stdout
}

// Logger envuelve zerolog para poder inyectarlo en casos de uso, handlers y adaptadores.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger raíz y lo instala también como logger global de zerolog.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Output != nil {
		w = cfg.Output
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	ctx := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()

	log.Logger = zl
	return &Logger{zl: zl}
}

// Nop descarta todo.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With contexto para derivar un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Component logger hijo con el campo "component".
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// Zerolog expone el logger interno.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
