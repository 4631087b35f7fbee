package conv

import (
	"regexp"
	"strings"
)

const (
	separatorLine  = "---"
	emphasisMarker = "**"
)

// imagePattern matches [IMAGE:<url>] where the url runs up to the next ']'
// on the same line.
var imagePattern = regexp.MustCompile(`\[IMAGE:([^\]\n]*)\]`)

// Parse turns a raw message into a Document. It never fails: anything that
// is not recognized markup is kept as literal paragraph text.
//
// Grammar: [IMAGE:<url>] anywhere (repeatable), a line equal to "---",
// and inline **emphasis**.
func Parse(raw string) Document {
	var doc Document

	// 1. Images first, in order of appearance
	for _, m := range imagePattern.FindAllStringSubmatch(raw, -1) {
		doc.Blocks = append(doc.Blocks, Image{URL: m[1]})
	}
	text := imagePattern.ReplaceAllLiteralString(raw, "")

	// 2. Line by line
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == separatorLine:
			doc.Blocks = append(doc.Blocks, Separator{})
		default:
			doc.Blocks = append(doc.Blocks, Paragraph{Spans: parseSpans(line)})
		}
	}

	return doc
}

// parseSpans splits a trimmed line on paired ** markers. An unpaired
// trailing marker and empty pairs stay literal.
func parseSpans(line string) []Span {
	var spans []Span
	appendSpan := func(text string, emphasized bool) {
		if text == "" {
			return
		}
		// merge adjacent plain runs so a literal marker does not split the text
		if n := len(spans); n > 0 && !emphasized && !spans[n-1].Emphasized {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, Span{Text: text, Emphasized: emphasized})
	}

	rest := line
	for {
		open := strings.Index(rest, emphasisMarker)
		if open < 0 {
			break
		}
		after := rest[open+len(emphasisMarker):]
		closing := strings.Index(after, emphasisMarker)
		if closing < 0 {
			break
		}
		appendSpan(rest[:open], false)
		if closing == 0 {
			// "****" carries no text to emphasize
			appendSpan(emphasisMarker+emphasisMarker, false)
		} else {
			appendSpan(after[:closing], true)
		}
		rest = after[closing+len(emphasisMarker):]
	}
	appendSpan(rest, false)

	return spans
}
