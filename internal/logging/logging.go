// Package logging opens one log file per pipeline stage.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Files opens stage loggers writing to Dir/<file> and to Console.
type Files struct {
	Dir     string
	Console io.Writer
	Level   slog.Level
}

// NewFiles creates the log directory.
func NewFiles(dir string, console io.Writer) (*Files, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create log directory %s", dir)
	}

	return &Files{Dir: dir, Console: console, Level: slog.LevelInfo}, nil
}

// Open returns a logger appending to the stage log file. The caller closes the file.
func (f *Files) Open(fileName string) (*slog.Logger, io.Closer, error) {
	path := filepath.Join(f.Dir, fileName)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open log file %s", path)
	}

	var out io.Writer = file
	if f.Console != nil {
		out = io.MultiWriter(file, f.Console)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: f.Level, AddSource: true})

	return slog.New(handler), file, nil
}
