package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leolibre/leolibre-backend/internal/model"
)

// Normalization errors.
var (
	ErrMalformedQuestion     = errors.New("question has no ordinal separator")
	ErrInconsistentQuizShape = errors.New("question, option and answer counts disagree")
)

// optionMarkers are the literal segment markers scanned in order.
var optionMarkers = [model.OptionsPerQuestion]string{"A-", "B-", "C-", "D-"}

// Normalize turns a raw generator response into canonical quiz content.
// It is a pure function: the raw response is never mutated and nothing is
// persisted. Mismatched sequence lengths fail with ErrInconsistentQuizShape
// rather than truncating.
func Normalize(raw *RawQuizResponse) (*model.QuizContent, error) {
	questions := make([]string, 0, len(raw.Questions))
	for i, q := range raw.Questions {
		text, err := stripOrdinal(q)
		if err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		questions = append(questions, text)
	}

	var options [][]string
	switch raw.Options.Shape {
	case OptionsShapeFlat:
		options = splitFlatOptions(raw.Options.Entries)
	default:
		options = make([][]string, 0, len(raw.Options.Entries))
		for _, blob := range raw.Options.Entries {
			options = append(options, splitOptionBlob(blob))
		}
	}

	answers := make([]string, 0, len(raw.Answers))
	for _, a := range raw.Answers {
		answers = append(answers, canonicalLabel(a))
	}

	if len(questions) != len(options) || len(questions) != len(answers) {
		return nil, fmt.Errorf("%w: %d questions, %d option sets, %d answers",
			ErrInconsistentQuizShape, len(questions), len(options), len(answers))
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: empty quiz", ErrInconsistentQuizShape)
	}

	minutes := raw.MinutesToAnswer
	if minutes <= 0 {
		minutes = model.DefaultMinutesToAnswer
	}

	return &model.QuizContent{
		Questions:         questions,
		Options:           options,
		CorrectAnswers:    answers,
		QuantityQuestions: len(questions),
		MinutesToAnswer:   minutes,
	}, nil
}

// stripOrdinal removes the leading question number ("3. Why ..." or
// "3 Why ..."). A question with no separator at all is malformed. A leading
// token that is not an ordinal is kept: generator revisions occasionally
// omit numbering and the text must survive intact.
func stripOrdinal(q string) (string, error) {
	q = strings.TrimSpace(q)
	i := strings.IndexByte(q, ' ')
	if i < 0 {
		return "", fmt.Errorf("%w: %q", ErrMalformedQuestion, q)
	}
	head := strings.TrimSuffix(q[:i], ".")
	if isDigits(head) {
		return strings.TrimSpace(q[i+1:]), nil
	}
	return q, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// splitOptionBlob extracts the four labeled segments from an embedded blob.
// Each segment runs from its marker to the next present marker, or to the
// end of the string. A missing marker leaves that slot empty instead of
// failing; observed generator output is occasionally short one option.
func splitOptionBlob(blob string) []string {
	starts := [model.OptionsPerQuestion]int{}
	pos := 0
	for i, m := range optionMarkers {
		j := strings.Index(blob[pos:], m)
		if j < 0 {
			starts[i] = -1
			continue
		}
		starts[i] = pos + j
		pos = pos + j + len(m)
	}

	out := make([]string, model.OptionsPerQuestion)
	for i := range optionMarkers {
		if starts[i] < 0 {
			continue
		}
		begin := starts[i] + len(optionMarkers[i])
		end := len(blob)
		for k := i + 1; k < model.OptionsPerQuestion; k++ {
			if starts[k] >= 0 {
				end = starts[k]
				break
			}
		}
		out[i] = strings.TrimSpace(blob[begin:end])
	}
	return out
}

// splitFlatOptions consumes pre-split label-prefixed entries in groups of
// four. countMarkers guarantees len(entries) is a multiple of four only when
// the probe chose this shape; a trailing partial group is ignored.
func splitFlatOptions(entries []string) [][]string {
	groups := len(entries) / model.OptionsPerQuestion
	out := make([][]string, 0, groups)
	for g := 0; g < groups; g++ {
		set := make([]string, model.OptionsPerQuestion)
		for i := 0; i < model.OptionsPerQuestion; i++ {
			set[i] = stripLabel(entries[g*model.OptionsPerQuestion+i])
		}
		out = append(out, set)
	}
	return out
}

// stripLabel removes a leading "A-".."D-" prefix from a single option entry.
func stripLabel(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[1] == '-' && s[0] >= 'A' && s[0] <= 'D' {
		return strings.TrimSpace(s[2:])
	}
	return s
}

// canonicalLabel reduces a correct-answer entry to its bare option label.
// Revisions emit either "B" or the full "B-option text" form.
func canonicalLabel(a string) string {
	a = strings.TrimSpace(a)
	if len(a) >= 2 && a[1] == '-' && a[0] >= 'A' && a[0] <= 'D' {
		return a[:1]
	}
	return a
}

// countMarkers reports how many distinct option markers appear in order
// within s. Used by the shape probe.
func countMarkers(s string) int {
	n := 0
	pos := 0
	for _, m := range optionMarkers {
		j := strings.Index(s[pos:], m)
		if j < 0 {
			continue
		}
		n++
		pos = pos + j + len(m)
	}
	return n
}
