// Package storage handles data persistence in JSONL and SQLite formats.
//
// JSONL files under .novelty/ are the source of truth; the SQLite database in
// .novelty/cache/ is rebuilt from them and can be deleted at any time.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// Works with thousands of referenced works exceed the scanner default.
const MaxJSONLLineCapacity = 16 * 1024 * 1024

// readJSONL reads every non-empty line of path into a T.
// A missing file yields an empty slice.
func readJSONL[T any](path, what string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s file: %w", what, err)
	}
	defer f.Close()

	var items []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", what, lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s file: %w", what, err)
	}

	return items, nil
}

// writeJSONL replaces the content of path with one line per item.
func writeJSONL[T any](path, what string, items []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s file: %w", what, err)
	}
	if err := encodeLines(f, what, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// appendJSONL adds items to the end of path, creating it if needed.
func appendJSONL[T any](path, what string, items []T) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s file for append: %w", what, err)
	}
	if err := encodeLines(f, what, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeLines[T any](f *os.File, what string, items []T) error {
	w := bufio.NewWriter(f)
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding %s %d: %w", what, i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing %s %d: %w", what, i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return w.Flush()
}

// ReadRawRecords reads raw retrieval records from a JSONL file.
func ReadRawRecords(path string) ([]document.RawRecord, error) {
	return readJSONL[document.RawRecord](path, "records")
}

// AppendRawRecords adds raw records to the end of a JSONL file.
func AppendRawRecords(path string, recs []document.RawRecord) error {
	return appendJSONL(path, "record", recs)
}

// WriteRawRecords writes raw records to a JSONL file, replacing existing content.
func WriteRawRecords(path string, recs []document.RawRecord) error {
	return writeJSONL(path, "record", recs)
}
