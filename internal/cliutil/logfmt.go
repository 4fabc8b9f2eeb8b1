package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Record represents a single invocation output event ready for JSON encoding.
type Record struct {
	Timestamp time.Time `json:"ts"`
	Tool      string    `json:"tool"`
	Source    string    `json:"source"`
	Message   string    `json:"msg"`
}

// EncodeRecord encodes a record to JSON, reporting errors to stderr if needed.
func EncodeRecord(enc *json.Encoder, stderr io.Writer, rec Record) {
	if enc == nil {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Source == "" {
		rec.Source = "system"
	}
	if err := enc.Encode(&rec); err != nil {
		fmt.Fprintf(stderr, "error: encode record: %v\n", err)
	}
}
