// Package models defines the records exchanged with the lab API and the
// static export. Records are plain values; optional fields are pointers.
package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gilab/labsite/internal/logging"
)

// Year is a publication year. The API sends a number, older static exports
// sometimes a numeric string; anything unparseable becomes 0.
type Year int

func (y *Year) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*y = 0
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			*y = Year(f)
			return nil
		}
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*y = Year(v)
			return nil
		}
	}

	*y = 0
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp decodes the server's datetimes, which may or may not carry a
// zone offset. Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == nil || *s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, *s); err == nil {
			t.Time = v
			return nil
		}
	}
	t.Time = time.Time{}
	warnLogger().Warn(context.Background(), "unrecognized timestamp, treating as unset", "value", *s)
	return nil
}

type loggerHolder struct{ l logging.Logger }

var decodeLogger atomic.Pointer[loggerHolder]

// SetLogger sets where decoding problems that do not fail a document are
// reported. A nil logger discards them.
func SetLogger(l logging.Logger) {
	if l == nil {
		decodeLogger.Store(nil)
		return
	}
	decodeLogger.Store(&loggerHolder{l: l})
}

func warnLogger() logging.Logger {
	if h := decodeLogger.Load(); h != nil {
		return h.l
	}
	return logging.Nop()
}

// Deref returns *p or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
