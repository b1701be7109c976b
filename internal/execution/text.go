package execution

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// ansiSequence matches CSI, OSC and two-byte escape sequences.
var ansiSequence = regexp.MustCompile(`\x1b(?:\[[0-?]*[ -/]*[@-~]|\][^\x07\x1b]*(?:\x07|\x1b\\)|[@-Z\\-_])`)

// segment maps a run of view bytes back to the original text.
type segment struct {
	view, orig int
}

// textView is the output with escape sequences removed, plus enough
// bookkeeping to report positions and lines against the original.
type textView struct {
	text  string
	segs  []segment
	lines []int
}

func newTextView(s string) *textView {
	v := &textView{}

	locs := ansiSequence.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		v.text = s
		v.segs = []segment{{view: 0, orig: 0}}
	} else {
		var b strings.Builder
		b.Grow(len(s))
		prev := 0
		for _, loc := range locs {
			if loc[0] > prev {
				v.segs = append(v.segs, segment{view: b.Len(), orig: prev})
				b.WriteString(s[prev:loc[0]])
			}
			prev = loc[1]
		}
		if prev < len(s) {
			v.segs = append(v.segs, segment{view: b.Len(), orig: prev})
			b.WriteString(s[prev:])
		}
		v.text = b.String()
		if len(v.segs) == 0 {
			v.segs = []segment{{view: 0, orig: len(s)}}
		}
	}

	v.lines = lineStarts(v.text)
	return v
}

// lineStarts returns the offset of every line. A lone carriage return
// starts a new line, so progress-bar redraws split cleanly.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			starts = append(starts, i+1)
		}
	}
	return starts
}

// origin converts a view offset to an offset in the original text.
func (v *textView) origin(pos int) int {
	i := sort.Search(len(v.segs), func(i int) bool { return v.segs[i].view > pos }) - 1
	if i < 0 {
		return pos
	}
	return v.segs[i].orig + pos - v.segs[i].view
}

// lineOf returns the index of the line containing pos.
func (v *textView) lineOf(pos int) int {
	return sort.Search(len(v.lines), func(i int) bool { return v.lines[i] > pos }) - 1
}

// line returns the text of line i without its terminator.
func (v *textView) line(i int) string {
	if i < 0 || i >= len(v.lines) {
		return ""
	}
	end := len(v.text)
	if i+1 < len(v.lines) {
		end = v.lines[i+1]
	}
	return strings.TrimRight(v.text[v.lines[i]:end], "\r\n")
}

// excerpt trims decoration, collapses whitespace and truncates s to limit runes.
func excerpt(s string, limit int) string {
	s = strings.ToValidUTF8(s, "�")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "=-*#>_ ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
