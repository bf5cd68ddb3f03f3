package assist

import (
	"regexp"
	"strings"
)

// fencedBlock matches the first fenced code block, with an optional
// language tag on the opening fence.
var fencedBlock = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n(.*?)```")

// ExtractSQL returns the SQL text from a model reply. A fenced block wins
// over surrounding prose; an unclosed opening fence is stripped; otherwise
// the trimmed reply is returned.
func ExtractSQL(reply string) string {
	text := strings.TrimSpace(reply)

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[2])
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && isLanguageTag(text[:nl]) {
			text = text[nl+1:]
		} else if nl < 0 {
			text = stripInlineTag(text)
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// sqlTags are the fence tags stripped from a single-line block. A bare
// keyword such as SELECT is not a tag.
var sqlTags = map[string]struct{}{
	"sql":        {},
	"duckdb":     {},
	"postgres":   {},
	"postgresql": {},
	"psql":       {},
	"sqlite":     {},
	"mysql":      {},
}

// stripInlineTag removes a leading SQL language tag from a one-line fence
// body such as "sql SELECT 1".
func stripInlineTag(text string) string {
	body := strings.TrimLeft(text, " \t")
	end := strings.IndexAny(body, " \t")
	if end < 0 {
		return text
	}
	if _, ok := sqlTags[strings.ToLower(body[:end])]; ok {
		return body[end+1:]
	}
	return text
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '+' || r == '-') {
			return false
		}
	}
	return true
}
