package generator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leolibre/leolibre-backend/internal/model"
)

// Shape probing errors.
var (
	ErrMissingKeys  = errors.New("generator response is missing questions, options or answers")
	ErrInvalidShape = errors.New("generator response field has an unknown shape")
)

// OptionsShape tags the two known generator option layouts.
type OptionsShape string

const (
	// OptionsShapeEmbedded: one blob per question embedding four labeled
	// segments ("A-... B-... C-... D-...").
	OptionsShapeEmbedded OptionsShape = "EMBEDDED"
	// OptionsShapeFlat: a flat sequence of label-prefixed entries whose
	// length is an exact multiple of four, consumed in groups of four.
	OptionsShapeFlat OptionsShape = "FLAT"
)

// RawOptions is the tagged variant over the option layouts. The probe in
// DecodeRaw settles the shape once, so downstream code never sniffs.
type RawOptions struct {
	Shape   OptionsShape
	Entries []string
}

// RawQuizResponse is the untrusted payload returned by the external quiz
// generator, reduced to a single canonical in-memory form. Field shapes vary
// by generator revision; DecodeRaw adapts each known variant.
type RawQuizResponse struct {
	Questions       []string
	Options         RawOptions
	Answers         []string
	MinutesToAnswer int // 0 when the generator omits it
}

// rawEnvelope mirrors the wire payload before any shape probing.
type rawEnvelope struct {
	Questions       *[]string          `json:"questions"`
	Options         *[]json.RawMessage `json:"options"`
	Answers         *[]json.RawMessage `json:"answers"`
	MinutesToAnswer int                `json:"minutes_to_answer"`
}

// optionObject is the object-wrapped option variant some revisions emit.
type optionObject struct {
	Options string `json:"options"`
}

// answerObject is the structured answer variant.
type answerObject struct {
	Answer string `json:"answer"`
}

// DecodeRaw parses a generator response body into a RawQuizResponse,
// adapting every known shape variant. All three required keys must be
// present; a missing key yields ErrMissingKeys.
func DecodeRaw(body []byte) (*RawQuizResponse, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode generator response: %w", err)
	}

	if env.Questions == nil || env.Options == nil || env.Answers == nil {
		return nil, ErrMissingKeys
	}

	opts, err := decodeOptions(*env.Options)
	if err != nil {
		return nil, err
	}

	answers, err := decodeAnswers(*env.Answers)
	if err != nil {
		return nil, err
	}

	return &RawQuizResponse{
		Questions:       *env.Questions,
		Options:         opts,
		Answers:         answers,
		MinutesToAnswer: env.MinutesToAnswer,
	}, nil
}

// decodeOptions accepts option entries as bare strings or as objects with an
// "options" field, then probes which layout the sequence uses.
func decodeOptions(raw []json.RawMessage) (RawOptions, error) {
	entries := make([]string, 0, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			entries = append(entries, s)
			continue
		}
		var obj optionObject
		if err := json.Unmarshal(r, &obj); err == nil {
			entries = append(entries, obj.Options)
			continue
		}
		return RawOptions{}, fmt.Errorf("%w: options[%d]", ErrInvalidShape, i)
	}
	return RawOptions{Shape: probeOptionsShape(entries), Entries: entries}, nil
}

// probeOptionsShape decides between the embedded-blob and pre-split layouts.
// A blob containing two or more distinct markers can only be an embedded
// per-question entry. Otherwise a sequence divisible by four is treated as
// pre-split; anything else falls back to embedded, whose per-slot extraction
// tolerates missing markers.
func probeOptionsShape(entries []string) OptionsShape {
	for _, e := range entries {
		if countMarkers(e) >= 2 {
			return OptionsShapeEmbedded
		}
	}
	if len(entries) > 0 && len(entries)%model.OptionsPerQuestion == 0 {
		return OptionsShapeFlat
	}
	return OptionsShapeEmbedded
}

// decodeAnswers accepts answer entries as bare labels or as objects with an
// "answer" field.
func decodeAnswers(raw []json.RawMessage) ([]string, error) {
	answers := make([]string, 0, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			answers = append(answers, s)
			continue
		}
		var obj answerObject
		if err := json.Unmarshal(r, &obj); err == nil {
			answers = append(answers, obj.Answer)
			continue
		}
		return nil, fmt.Errorf("%w: answers[%d]", ErrInvalidShape, i)
	}
	return answers, nil
}
