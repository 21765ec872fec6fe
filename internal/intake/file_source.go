package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// FileSource reads messages from a text file, one "sender|subject|body"
// per line. A missing file yields no messages.
type FileSource struct {
	path string
}

// NewFileSource creates a source over path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file" }

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) ([]Message, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open intake file: %w", err)
	}
	defer f.Close()
	return ParseLines(ctx, f)
}

// ParseLines parses "sender|subject|body" lines. Blank lines are skipped;
// missing parts fall back to "unknown" for the sender and empty text.
func ParseLines(ctx context.Context, r io.Reader) ([]Message, error) {
	var messages []Message
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		messages = append(messages, ParseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read intake file: %w", err)
	}
	return messages, nil
}

// ParseLine splits one line. Extra separators stay in the body.
func ParseLine(line string) Message {
	parts := strings.SplitN(line, "|", 3)
	msg := Message{Sender: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		msg.Subject = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		msg.Body = strings.TrimSpace(parts[2])
	}
	if msg.Sender == "" {
		msg.Sender = "unknown"
	}
	return msg
}
