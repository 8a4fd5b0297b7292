// Package frontmatter detects, splits and re-assembles the `---` delimited
// metadata block at the top of a content file.
//
// The block format is deliberately simple: one `key: value` pair per line, split on
// the first colon. It is not YAML.
package frontmatter

import (
	"strings"
)

const delimiter = "---"

// Style captures formatting details needed for stable rewriting.
//
// It intentionally focuses on newline/trailing newline shape and does not
// attempt to preserve original formatting of individual lines.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Field is one `key: value` line of a front matter block.
type Field struct {
	Key   string
	Value string
}

// Split separates the front matter block from the body.
//
// The first line must be exactly `---` and the block ends at the next line that is
// exactly `---` (followed by a newline or the end of the input). If the content does
// not start with a delimiter line, or the block is never closed, had is false and
// body is the full input.
func Split(content string) (block string, body string, had bool, style Style) {
	style = detectStyle(content)
	if strings.TrimSpace(content) == "" {
		return "", content, false, style
	}

	nl := style.Newline
	open := delimiter + nl
	if !strings.HasPrefix(content, open) {
		return "", content, false, style
	}
	rest := content[len(open):]

	// Empty block: the closing delimiter follows immediately.
	if rest == delimiter || strings.HasPrefix(rest, delimiter+nl) {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, delimiter), nl), true, style
	}

	closeSeq := nl + delimiter + nl
	if idx := strings.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, style
	}
	if strings.HasSuffix(rest, nl+delimiter) {
		return rest[:len(rest)-len(delimiter)], "", true, style
	}

	return "", content, false, style
}

// Join reassembles a document from a raw front matter block and body.
//
// If had is false, Join returns body as-is.
func Join(block string, body string, had bool, style Style) string {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	var b strings.Builder
	b.Grow(len(block) + len(body) + 2*(len(delimiter)+len(nl)))
	b.WriteString(delimiter + nl)
	b.WriteString(block)
	b.WriteString(delimiter + nl)
	b.WriteString(body)
	return b.String()
}

// ParseFields splits a raw block into fields in source order.
//
// Each line is split on its first colon and both sides are trimmed. Lines without
// a colon, and lines with an empty key, are skipped.
func ParseFields(block string) []Field {
	block = strings.TrimSpace(block)
	if block == "" {
		return nil
	}

	lines := strings.Split(block, "\n")
	fields := make([]Field, 0, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields = append(fields, Field{Key: key, Value: strings.TrimSpace(value)})
	}
	return fields
}

// SerializeFields renders fields as a raw block (without delimiters), one
// `key: value` line per field, using the newline of style (defaults to \n).
func SerializeFields(fields []Field, style Style) string {
	if len(fields) == 0 {
		return ""
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString(nl)
	}
	return b.String()
}

func detectStyle(content string) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
