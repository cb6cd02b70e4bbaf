// Package parsers holds the low-level file parsing helpers shared by all
// tool adapters: line-delimited JSON scanning and lenient timestamp and
// number parsing for the various on-disk formats found in the wild.
package parsers

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
)

const maxLineSize = 10 * 1024 * 1024 // some tools log entire file contents into one event

// ForEachJSONLine streams every non-empty line of a line-delimited JSON
// file to handle. Malformed lines are counted and skipped; a single bad
// line never aborts the file. The only returned error is a failure to
// open the file itself.
func ForEachJSONLine(path string, handle func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), maxLineSize)

	skipped := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		handle(line)
	}
	if skipped > 0 {
		log.Printf("[parsers] %s: skipped %d malformed lines", path, skipped)
	}
	return nil
}

// DecodeJSONLines unmarshals each well-formed line into a fresh T and
// collects the results. Lines that fail to unmarshal into T are skipped.
func DecodeJSONLines[T any](path string) ([]T, error) {
	var out []T
	err := ForEachJSONLine(path, func(line []byte) {
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return
		}
		out = append(out, v)
	})
	return out, err
}
