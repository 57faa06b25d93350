// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotating log written inside Options.Dir.
const FileName = "agroinsight.log"

// Options selects the log level and sinks.
type Options struct {
	Verbose bool
	// Dir enables a rotating JSON log file when set.
	Dir string
	// Console defaults to os.Stderr.
	Console io.Writer
}

// Init replaces log.Logger with a console writer and, when opt.Dir is set, a
// rotating file. The returned closer flushes the file sink.
func Init(opt Options) (io.Closer, error) {
	level := zerolog.WarnLevel
	if opt.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := opt.Console
	noColor := true
	if out == nil {
		out = os.Stderr
		noColor = !(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	if opt.Dir == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(opt.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", opt.Dir, err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(opt.Dir, FileName),
		MaxSize:    16, // megabytes
		MaxBackups: 8,
		MaxAge:     90, // days
		Compress:   true,
	}
	multi := zerolog.MultiLevelWriter(io.Writer(console), file)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
