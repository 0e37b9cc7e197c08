package todotxt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
)

// ReadRecords parses every non-blank line of r. A malformed line aborts the
// whole read so no entry is silently dropped.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	var records []model.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := Parse(line)
		if err != nil {
			var fe *model.FormatError
			if errors.As(err, &fe) {
				fe.Line = lineNo
				fe.Input = line
			}
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading todo records: %w", err)
	}
	return records, nil
}

// MarshalRecords renders records as newline-terminated lines.
func MarshalRecords(records []model.Record) []byte {
	var buf bytes.Buffer
	for _, rec := range records {
		buf.WriteString(Format(rec))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteRecords writes all records to w with a single Write call.
func WriteRecords(w io.Writer, records []model.Record) error {
	if _, err := w.Write(MarshalRecords(records)); err != nil {
		return fmt.Errorf("writing todo records: %w", err)
	}
	return nil
}
