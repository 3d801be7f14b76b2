package asr

import "strings"

// Clean applies the Transcriber's per-inner-segment text post-processing:
// strip parenthesized sound-effect annotations, trim ASCII whitespace,
// then collapse repeated content the model sometimes emits when it loses
// its place mid-segment.
//
// Grounded on the hysteresis-style mode tracking the teacher's state
// machines use elsewhere in this repo (pkg/vad), applied here to a
// parenthesis-suppression scanner instead of a speech/silence gate.
func Clean(text string) string {
	text = stripParens(text)
	text = trimASCIISpace(text)
	text = dedupe(text)
	return text
}

// stripParens replaces parenthesized regions with a single space. Entering
// "(" suppresses output until a matching ")", which emits exactly one
// space. An unmatched "(" leaves the rest of the string suppressed; an
// unmatched ")" outside suppress mode is passed through literally.
func stripParens(text string) string {
	var sb strings.Builder
	suppress := false
	for _, r := range text {
		if suppress {
			if r == ')' {
				sb.WriteRune(' ')
				suppress = false
			}
			continue
		}
		if r == '(' {
			suppress = true
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const asciiWhitespace = " \t\n\r\v\f"

func trimASCIISpace(text string) string {
	return strings.Trim(text, asciiWhitespace)
}

// dedupe collapses two shapes of model repetition: a text entirely made
// of one token repeated (split on a literal single space), and a text
// that is some prefix P doubled at the front (P+P+rest, P longer than 4
// characters and no more than half the string).
func dedupe(text string) string {
	tokens := strings.Split(text, " ")
	if len(tokens) >= 2 {
		allSame := true
		for _, tok := range tokens[1:] {
			if tok != tokens[0] {
				allSame = false
				break
			}
		}
		if allSame {
			return tokens[0]
		}
	}
	return collapseDoubledPrefix(text)
}

func collapseDoubledPrefix(text string) string {
	n := len(text)
	for i := 5; i <= n/2; i++ {
		prefix := text[:i]
		doubled := prefix + prefix
		if !strings.HasPrefix(text, doubled) {
			continue
		}
		for strings.HasPrefix(text, doubled) {
			text = text[i:]
		}
		break
	}
	return text
}

// DuplicateSuppressor implements the Transcriber's consecutive-duplicate
// suppression (post-processing steps 4-5): it holds the previous inner
// segment's raw (pre-cleaning) text, grounded on original_source/src/speech.rs's
// `last_segment != segment` comparison. Each call compares the
// current cleaned text against that stored raw text, then advances the
// stored value to the current raw text unconditionally — so a skipped
// segment still updates what the next one is compared against.
type DuplicateSuppressor struct {
	prevRaw string
}

// Observe reports whether cleaned should be emitted, given the raw text
// the ASR engine produced this inner segment (before Clean was applied).
func (d *DuplicateSuppressor) Observe(raw, cleaned string) bool {
	emit := cleaned != "" && cleaned != d.prevRaw
	d.prevRaw = raw
	return emit
}
