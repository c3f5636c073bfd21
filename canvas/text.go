package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// MeasureText returns the display width of a string in terminal cells.
func MeasureText(text string) int {
	return runewidth.StringWidth(text)
}

// Truncate shortens text to at most maxWidth cells, ending with an ellipsis when
// anything was cut.
func Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	return runewidth.Truncate(text, maxWidth, "…")
}

// WrapText wraps text to fit within maxWidth using word boundaries.
// Words longer than a line are broken at character boundaries.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return nil
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		if current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
	}

	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if currentWidth > 0 && currentWidth+1+wordWidth <= maxWidth {
			current.WriteRune(' ')
			current.WriteString(word)
			currentWidth += 1 + wordWidth
			continue
		}
		flush()

		for wordWidth > maxWidth {
			head := runewidth.Truncate(word, maxWidth, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			word = word[len(head):]
			wordWidth = runewidth.StringWidth(word)
		}
		current.WriteString(word)
		currentWidth = wordWidth
	}
	flush()
	return lines
}
