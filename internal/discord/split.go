package discord

import (
	"strings"
	"unicode/utf8"
)

// SafeMessageLimit stays below Discord's 2000 character message limit.
const SafeMessageLimit = 1900

// SplitMessage cuts content into chunks of at most max bytes, breaking at
// line ends. Lines longer than max are hard-split on a rune boundary.
func SplitMessage(content string, max int) []string {
	if max <= 0 {
		max = SafeMessageLimit
	}
	if max < utf8.UTFMax {
		max = utf8.UTFMax
	}
	if len(content) <= max {
		if content == "" {
			return nil
		}
		return []string{content}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		s := strings.TrimRight(current.String(), "\n")
		if strings.TrimSpace(s) != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case len(line) > max:
			flush()
			for len(line) > max {
				cut := max
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				chunks = append(chunks, line[:cut])
				line = line[cut:]
			}
			current.WriteString(line + "\n")
		case current.Len()+len(line)+1 > max:
			flush()
			current.WriteString(line + "\n")
		default:
			current.WriteString(line + "\n")
		}
	}
	flush()
	return chunks
}
