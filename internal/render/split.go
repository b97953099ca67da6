package render

import "strings"

// SegmentKind distinguishes prose from fenced code
type SegmentKind int

const (
	SegmentProse SegmentKind = iota
	SegmentCode
)

// Segment is one independently renderable piece of an answer
type Segment struct {
	Kind SegmentKind
	// Lang is the fence info string of a code segment ("python", "" ...)
	Lang string
	// Text is prose markdown, or the code without its fences
	Text string
}

// Split breaks an answer into alternating prose and fenced-code segments.
// Whitespace-only prose between fences is dropped. An unterminated fence
// runs to the end of the answer.
func Split(answer string) []Segment {
	var (
		segments []Segment
		buf      []string
		fence    string
		lang     string
	)

	flushProse := func() {
		text := strings.Join(buf, "\n")
		if strings.TrimSpace(text) != "" {
			segments = append(segments, Segment{Kind: SegmentProse, Text: strings.Trim(text, "\n")})
		}
		buf = buf[:0]
	}
	flushCode := func() {
		segments = append(segments, Segment{Kind: SegmentCode, Lang: lang, Text: strings.Join(buf, "\n")})
		buf = buf[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(answer, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		if fence == "" {
			if marker, info, ok := openFence(trimmed); ok {
				flushProse()
				fence, lang = marker, info
				continue
			}
			buf = append(buf, line)
			continue
		}

		if closesFence(trimmed, fence) {
			flushCode()
			fence, lang = "", ""
			continue
		}
		buf = append(buf, line)
	}

	if fence != "" {
		flushCode()
	} else {
		flushProse()
	}
	return segments
}

// openFence recognizes ``` or ~~~ (three or more) followed by an info string
func openFence(line string) (marker, info string, ok bool) {
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(line) && line[n] == ch {
			n++
		}
		if n < 3 {
			continue
		}
		rest := strings.TrimSpace(line[n:])
		if ch == '`' && strings.Contains(rest, "`") {
			return "", "", false
		}
		if fields := strings.Fields(rest); len(fields) > 0 {
			info = fields[0]
		}
		return line[:n], info, true
	}
	return "", "", false
}

func closesFence(line, fence string) bool {
	if !strings.HasPrefix(line, fence) {
		return false
	}
	return strings.Trim(line, fence[:1]) == ""
}

// CodeBlocks returns the code segments of answer in order
func CodeBlocks(answer string) []Segment {
	var blocks []Segment
	for _, seg := range Split(answer) {
		if seg.Kind == SegmentCode {
			blocks = append(blocks, seg)
		}
	}
	return blocks
}

// LastCodeBlock returns the final code segment, used by the copy shortcut
func LastCodeBlock(answer string) (Segment, bool) {
	blocks := CodeBlocks(answer)
	if len(blocks) == 0 {
		return Segment{}, false
	}
	return blocks[len(blocks)-1], true
}
