package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Options select which records Tail returns.
type Options struct {
	Lines    int        // most recent records to keep; zero or less keeps none
	MinLevel slog.Level // records below this level are skipped
	Match    string     // case-insensitive substring filter
}

// Tail returns the last records of the slog text log at path that pass opts.
// A missing file yields no records.
func Tail(path string, opts Options) ([]string, error) {
	if opts.Lines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	match := strings.ToLower(opts.Match)
	ring := make([]string, opts.Lines)
	count, next := 0, 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if lvl, ok := Level(line); ok && lvl < opts.MinLevel {
			continue
		}
		if match != "" && !strings.Contains(strings.ToLower(line), match) {
			continue
		}
		ring[next] = line
		next = (next + 1) % opts.Lines
		count = min(count+1, opts.Lines)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	out := make([]string, count)
	start := 0
	if count == opts.Lines {
		start = next
	}
	for i := range out {
		out[i] = ring[(start+i)%opts.Lines]
	}
	return out, nil
}

// Level extracts the level=... attribute of a slog text record.
func Level(line string) (slog.Level, bool) {
	i := strings.Index(line, "level=")
	if i < 0 {
		return 0, false
	}
	field := line[i+len("level="):]
	if j := strings.IndexByte(field, ' '); j >= 0 {
		field = field[:j]
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(field)); err != nil {
		return 0, false
	}
	return lvl, true
}
