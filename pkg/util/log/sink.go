// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Format selects how entries are written.
type Format string

const (
	// FormatText writes human-readable lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per entry.
	FormatJSON Format = "json"
)

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", errors.Newf("unknown log format %q", s)
}

var mainLog struct {
	mu         sync.Mutex
	logger     zerolog.Logger
	redactable bool
}

func init() {
	mainLog.logger = newLogger(os.Stderr, FormatText)
}

func newLogger(w io.Writer, format Format) zerolog.Logger {
	if format == FormatText {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// SetOutput redirects all subsequent log entries to w using the given format.
func SetOutput(w io.Writer, format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()
	mainLog.logger = newLogger(w, format)
	return nil
}

// SetRedactable controls whether unsafe values in log messages are enclosed
// in redaction markers.
func SetRedactable(redactable bool) {
	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()
	mainLog.redactable = redactable
}

func (s Severity) level() zerolog.Level {
	switch s {
	case SeverityWarning:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func logf(ctx context.Context, sev Severity, format string, args []interface{}) {
	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()

	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	buf.WriteString(renderArgs(mainLog.redactable, format, args))
	mainLog.logger.WithLevel(sev.level()).Msg(buf.String())
}
