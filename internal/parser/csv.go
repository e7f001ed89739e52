// Package parser reads the weekly batch report into header-normalized rows.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseWarning is a non-fatal problem with one line of the input.
type ParseWarning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Row is one data row keyed by normalized header. Line is the 1-based line
// of the input it came from; the header is line 1.
type Row struct {
	Line   int
	Values map[string]string
}

// ParseResult holds the parsed rows and any warnings.
type ParseResult struct {
	Encoding string         `json:"encoding"`
	Headers  []string       `json:"headers"`
	Rows     []Row          `json:"-"`
	Warnings []ParseWarning `json:"warnings"`
}

// Options tweaks parsing. A zero Delimiter is detected from the header line.
type Options struct {
	Delimiter rune
}

// ReadAll reads r fully and parses it.
func ReadAll(r io.Reader, opts Options) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return Parse(data, opts)
}

// Parse decodes a delimited report. Short rows are padded, long rows are
// truncated and unreadable rows are skipped; each gets a warning. Rows with
// no non-blank cell are dropped silently.
func Parse(data []byte, opts Options) (*ParseResult, error) {
	decoded, enc, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = detectDelimiter(decoded)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	raw, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty report: no header row")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	res := &ParseResult{Encoding: enc}
	res.Headers = normalizeHeaders(raw, &res.Warnings)
	width := len(res.Headers)

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			res.Warnings = append(res.Warnings, ParseWarning{Line: line, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		line, _ := reader.FieldPos(0)
		if blank(cells) {
			continue
		}

		switch {
		case len(cells) < width:
			res.Warnings = append(res.Warnings, ParseWarning{
				Line:    line,
				Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(cells), width),
			})
			padded := make([]string, width)
			copy(padded, cells)
			cells = padded
		case len(cells) > width:
			res.Warnings = append(res.Warnings, ParseWarning{
				Line:    line,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(cells), width),
			})
			cells = cells[:width]
		}

		values := make(map[string]string, width)
		for i, h := range res.Headers {
			values[h] = strings.TrimSpace(cells[i])
		}
		res.Rows = append(res.Rows, Row{Line: line, Values: values})
	}

	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("report contains no data rows")
	}
	return res, nil
}

// normalizeHeaders normalizes every column title and keeps them unique.
func normalizeHeaders(raw []string, warnings *[]ParseWarning) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		name := NormalizeHeader(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
			*warnings = append(*warnings, ParseWarning{Line: 1, Message: fmt.Sprintf("column %d has no title; using %s", i+1, name)})
		}
		if n := seen[name]; n > 0 {
			dup := fmt.Sprintf("%s_%d", name, n+1)
			*warnings = append(*warnings, ParseWarning{Line: 1, Message: fmt.Sprintf("duplicate column %q renamed to %s", name, dup)})
			seen[name] = n + 1
			name = dup
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte{'\t'}) > bytes.Count(first, []byte{','}) {
		return '\t'
	}
	if bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
		return ';'
	}
	return ','
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
