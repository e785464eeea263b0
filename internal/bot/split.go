package bot

import "strings"

// DefaultMessageLimit is the Telegram text message limit.
const DefaultMessageLimit = 4096

// SplitMessage breaks text into parts of at most limit runes, cutting at
// line boundaries where possible.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var parts []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		if curLen+len(runes) > limit {
			flush()
		}
		for len(runes) > limit {
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		cur.WriteString(string(runes))
		curLen += len(runes)
	}
	flush()

	return parts
}
