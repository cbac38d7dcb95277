// Package frontmatter finds and preserves YAML front matter at the top of
// Markdown rule files.
//
// A front-matter block is a prefix of a file made of a line that is exactly
// "---", any number of lines, and a second line that is exactly "---":
//
//	---
//	description: Apply this rule to the entire repository
//	alwaysApply: true
//	---
//	# Rules
//
// Only the line terminator ("\n" or "\r\n") is ignored when comparing a line
// against the delimiter; "--- " or " ---" do not count.
//
// Scan walks the lines with a small state machine
// (BeforeStart -> InFrontMatter -> AfterFrontMatter). Merge uses the result
// to replace everything after the block while keeping the block
// byte-for-byte.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes a front-matter block.
const Delimiter = "---"

// ErrNotClosed is returned when decoding a block that has no closing delimiter.
var ErrNotClosed = errors.New("front matter is not closed")

// State is the position of the scanner relative to the front matter.
type State int

const (
	// BeforeStart means no opening delimiter was seen; the file has no front matter.
	BeforeStart State = iota
	// InFrontMatter means an opening delimiter was seen but never closed.
	InFrontMatter
	// AfterFrontMatter means a complete block was found.
	AfterFrontMatter
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case BeforeStart:
		return "before-start"
	case InFrontMatter:
		return "in-front-matter"
	case AfterFrontMatter:
		return "after-front-matter"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Block is the front-matter prefix found by Scan.
type Block struct {
	// Raw is the text kept at the top of the file. For a closed block it is
	// lines 0..k inclusive, byte-for-byte. For an unterminated block it is
	// the single-line stand-in "---\n". Empty when there is no front matter.
	Raw string

	// Lines is the number of lines in Raw.
	Lines int

	// State is where the scanner stopped.
	State State

	// inner is the text between the delimiters of a closed block.
	inner string
}

// Found reports whether the file starts with an opening delimiter.
func (b Block) Found() bool {
	return b.State != BeforeStart
}

// Closed reports whether a complete block was found.
func (b Block) Closed() bool {
	return b.State == AfterFrontMatter
}

// YAML returns the text between the two delimiter lines.
func (b Block) YAML() string {
	return b.inner
}

// Fields decodes the block's YAML into a map. The decoded values are
// informational; a block that is not valid YAML is still preserved by Merge.
func (b Block) Fields() (map[string]any, error) {
	if !b.Closed() {
		return nil, ErrNotClosed
	}
	fields := make(map[string]any)
	if err := yaml.Unmarshal([]byte(b.inner), &fields); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	return fields, nil
}

// Keys returns the top-level keys of the block in document order.
func (b Block) Keys() ([]string, error) {
	if !b.Closed() {
		return nil, ErrNotClosed
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(b.inner), &doc); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	// Empty block
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("front matter is a %s, not a mapping", kindName(root.Kind))
	}

	keys := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
	}
	return keys, nil
}

// Scan finds the front-matter block at the top of content.
func Scan(content string) Block {
	lines := SplitLines(content)

	state := BeforeStart
	offset := 0
	count := 0

	for _, line := range lines {
		switch state {
		case BeforeStart:
			if !isDelimiter(line) {
				return Block{State: BeforeStart}
			}
			state = InFrontMatter
		case InFrontMatter:
			if isDelimiter(line) {
				state = AfterFrontMatter
			}
		}

		offset += len(line)
		count++

		if state == AfterFrontMatter {
			break
		}
	}

	switch state {
	case AfterFrontMatter:
		first := len(lines[0])
		last := len(lines[count-1])
		return Block{
			Raw:   content[:offset],
			Lines: count,
			State: AfterFrontMatter,
			inner: content[first : offset-last],
		}
	case InFrontMatter:
		return Block{
			Raw:   Delimiter + "\n",
			Lines: 1,
			State: InFrontMatter,
		}
	default:
		return Block{State: BeforeStart}
	}
}

// Merge replaces everything after the front matter of existing with body.
//
// With no front matter the result is body. With an unterminated block only
// the first line is kept, then a blank line, then body; a leading line break
// in body counts as the blank line. With a closed block the block is kept
// byte-for-byte and joined to body by the seam rule (see Join).
func Merge(existing, body string) (string, Block) {
	block := Scan(existing)

	switch block.State {
	case AfterFrontMatter:
		return Join(block.Raw, body), block
	case InFrontMatter:
		if strings.HasPrefix(body, "\n") {
			return block.Raw + body, block
		}
		return block.Raw + "\n" + body, block
	default:
		return body, block
	}
}

// Join concatenates a closed front-matter block and a body:
//
//   - block ends with two line breaks: one leading line break is dropped from body;
//   - block ends with one line break: that line break is the only separator;
//   - block ends without a line break: one is inserted before body.
func Join(block, body string) string {
	switch {
	case strings.HasSuffix(block, "\n\n"):
		return block + strings.TrimPrefix(body, "\n")
	case strings.HasSuffix(block, "\n"):
		// No blank line: "---\nfoo: 1\n---\n" + "body\n" stays "---\nfoo: 1\n---\nbody\n".
		return block + body
	default:
		return block + "\n" + body
	}
}

// ValidateHeader checks that header is a closed front-matter block holding a
// YAML mapping, optionally followed by blank lines.
func ValidateHeader(header string) error {
	block := Scan(header)
	if !block.Closed() {
		return ErrNotClosed
	}
	if _, err := block.Keys(); err != nil {
		return err
	}
	if rest := header[len(block.Raw):]; strings.TrimSpace(rest) != "" {
		return fmt.Errorf("unexpected text after front matter: %q", rest)
	}
	return nil
}

// SplitLines splits s after each "\n", keeping the terminators. A final line
// without a terminator is returned as is. An empty string has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isDelimiter(line string) bool {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line == Delimiter
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
