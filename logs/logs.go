package logs

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var Output *os.File

// ParseLevel accepts debug, info, warn and error. An empty level means info.
func ParseLevel(level string) (slog.Level, error) {
	var out slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := out.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, errors.Wrapf(err, "invalid log level '%s'", level)
	}
	return out, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// InitializeFileLogger redirects logging, including the standard log package,
// to logs.txt in dir, truncating it.
func InitializeFileLogger(dir string, level slog.Level) (*slog.Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "couldn't create %s directory", dir)
	}
	f, err := os.Create(filepath.Join(dir, "logs.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create logs file")
	}
	Output = f

	logger := New(Output, level)
	slog.SetDefault(logger)
	return logger, nil
}

func CloseLogger() {
	if Output != nil {
		Output.Close()
	}
}
