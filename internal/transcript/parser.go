package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

const (
	maxErrors        = 10
	maxScanTokenSize = 10 * 1024 * 1024
)

// DefaultShellTools are the tool names whose invocations are treated as
// shell commands.
var DefaultShellTools = []string{"Bash"}

// Parser reads Claude Code JSONL transcripts.
type Parser struct {
	shellTools map[string]bool
}

// NewParser returns a Parser that extracts commands from the given tool
// names, or from DefaultShellTools when none are given.
func NewParser(shellTools ...string) *Parser {
	if len(shellTools) == 0 {
		shellTools = DefaultShellTools
	}
	p := &Parser{shellTools: make(map[string]bool, len(shellTools))}
	for _, name := range shellTools {
		p.shellTools[name] = true
	}
	return p
}

// line is one record of a transcript file.
type line struct {
	UUID        string          `json:"uuid"`
	ParentUUID  string          `json:"parentUuid,omitempty"`
	Type        string          `json:"type"`
	Message     json.RawMessage `json:"message,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	IsMeta      bool            `json:"isMeta,omitempty"`
	IsSidechain bool            `json:"isSidechain,omitempty"`
}

type message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type shellInput struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Parse reads the transcript at path. The session ID falls back to the
// file name when the records carry none. Malformed lines are counted and
// skipped.
func (p *Parser) Parse(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()
	return p.ParseReader(f, strings.TrimSuffix(filepath.Base(path), ".jsonl"))
}

// ParseReader reads a transcript from r. sessionID is used when the records
// carry none.
func (p *Parser) ParseReader(r io.Reader, sessionID string) (*Session, error) {
	s := &Session{
		ID:       sessionID,
		Turns:    make([]intent.Turn, 0),
		Commands: make([]Command, 0),
	}
	pending := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}

		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			s.addError(lineNum, fmt.Sprintf("JSON parse error: %v", err))
			continue
		}
		if l.Type != "user" && l.Type != "assistant" {
			continue
		}
		if l.IsMeta || l.IsSidechain {
			continue
		}
		if l.SessionID != "" {
			s.ID = l.SessionID
		}

		if err := p.apply(s, l, pending); err != nil {
			s.addError(lineNum, fmt.Sprintf("message parse error: %v", err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning transcript: %w", err)
	}
	return s, nil
}

func (s *Session) addError(lineNum int, msg string) {
	s.ErrorCount++
	if len(s.Errors) < maxErrors {
		s.Errors = append(s.Errors, ParseError{Line: lineNum, Error: msg})
	}
}

// apply folds one user or assistant record into s.
func (p *Parser) apply(s *Session, l line, pending map[string]int) error {
	var m message
	if err := json.Unmarshal(l.Message, &m); err != nil {
		return err
	}
	role := intent.Role(l.Type)
	ts := parseTimestamp(l.Timestamp)

	// User prompts are often a bare string.
	var text string
	if err := json.Unmarshal(m.Content, &text); err == nil {
		s.addTurn(role, text)
		return nil
	}

	var blocks []block
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return fmt.Errorf("content is neither text nor blocks: %w", err)
	}

	var texts []string
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if b.Text != "" {
				texts = append(texts, b.Text)
			}
		case "tool_use":
			if !p.shellTools[b.Name] {
				continue
			}
			var in shellInput
			if err := json.Unmarshal(b.Input, &in); err != nil || in.Command == "" {
				continue
			}
			// Text before the tool call belongs to the issuing turn.
			if len(texts) > 0 {
				s.addTurn(role, strings.Join(texts, "\n"))
				texts = nil
			}
			pending[b.ID] = len(s.Commands)
			s.Commands = append(s.Commands, Command{
				ToolUseID:   b.ID,
				Command:     in.Command,
				Description: in.Description,
				Timestamp:   ts,
				TurnIndex:   len(s.Turns) - 1,
			})
		case "tool_result":
			i, ok := pending[b.ToolUseID]
			if !ok {
				continue
			}
			delete(pending, b.ToolUseID)
			s.Commands[i].Output = resultText(b.Content)
			s.Commands[i].IsError = b.IsError
			s.Commands[i].Completed = true
		}
	}
	if len(texts) > 0 {
		s.addTurn(role, strings.Join(texts, "\n"))
	}
	return nil
}

// harnessPrefixes mark user records written by the client rather than typed
// by the user.
var harnessPrefixes = []string{"<command-", "<local-command-", "[Request interrupted"}

func (s *Session) addTurn(role intent.Role, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return
	}
	if role == intent.RoleUser {
		for _, prefix := range harnessPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				return
			}
		}
	}
	s.Turns = append(s.Turns, intent.Turn{Role: role, Content: content, Index: len(s.Turns)})
}

// resultText flattens a tool_result content field, which is either a string
// or a list of text blocks.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func parseTimestamp(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts
	}
	return time.Time{}
}
