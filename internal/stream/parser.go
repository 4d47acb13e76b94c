package stream

import (
	"bufio"
	"io"
	"strings"
)

// frame is one server-sent event as it appears on the wire: an optional
// event name plus the joined data lines.
type frame struct {
	event string
	data  string
}

// readFrames scans an SSE byte stream and calls emit for each complete
// frame. Comment lines (leading colon) and id:/retry: fields are skipped;
// frames without data never fire. Returns when the reader ends or errors; a
// partial frame at EOF is discarded.
func readFrames(r io.Reader, emit func(frame)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(dataLines) > 0 {
				emit(frame{event: event, data: strings.Join(dataLines, "\n")})
			}
			event = ""
			dataLines = nil
		case strings.HasPrefix(line, ":"):
			// comment, used by servers as keep-alive
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			value = strings.TrimPrefix(value, " ")
			dataLines = append(dataLines, value)
		}
	}
	return scanner.Err()
}
