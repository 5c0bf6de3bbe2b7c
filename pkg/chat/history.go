package chat

import "strings"

// FormatHistory splits turns into the transcript of everything before the last
// turn and the text of the last turn. Each history line is "{role}: {text}".
// An empty slice yields two empty strings.
func FormatHistory(turns []Turn) (history, input string) {
	if len(turns) == 0 {
		return "", ""
	}

	prior := turns[:len(turns)-1]
	lines := make([]string, len(prior))
	for i, t := range prior {
		lines[i] = t.Role + ": " + t.Text
	}

	return strings.Join(lines, "\n"), turns[len(turns)-1].Text
}
