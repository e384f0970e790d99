package generator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leolibre/leolibre-backend/internal/model"
)

func embeddedRaw() *RawQuizResponse {
	return &RawQuizResponse{
		Questions: []string{
			"1. Why does the narrator return home?",
			"2 What color is the house?",
		},
		Options: RawOptions{
			Shape: OptionsShapeEmbedded,
			Entries: []string{
				"A-Duty B-Love C-Fear D-Money",
				"A-Red B-Blue C-Green D-White",
			},
		},
		Answers:         []string{"B", "D-White"},
		MinutesToAnswer: 8,
	}
}

func TestNormalizeEmbeddedOptions(t *testing.T) {
	content, err := Normalize(embeddedRaw())
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	wantQuestions := []string{
		"Why does the narrator return home?",
		"What color is the house?",
	}
	if !reflect.DeepEqual(content.Questions, wantQuestions) {
		t.Errorf("questions = %v, want %v", content.Questions, wantQuestions)
	}

	wantOptions := [][]string{
		{"Duty", "Love", "Fear", "Money"},
		{"Red", "Blue", "Green", "White"},
	}
	if !reflect.DeepEqual(content.Options, wantOptions) {
		t.Errorf("options = %v, want %v", content.Options, wantOptions)
	}

	wantAnswers := []string{"B", "D"}
	if !reflect.DeepEqual(content.CorrectAnswers, wantAnswers) {
		t.Errorf("answers = %v, want %v", content.CorrectAnswers, wantAnswers)
	}

	if content.QuantityQuestions != 2 {
		t.Errorf("quantity = %d, want 2", content.QuantityQuestions)
	}
	if content.MinutesToAnswer != 8 {
		t.Errorf("minutes = %d, want 8", content.MinutesToAnswer)
	}
}

func TestNormalizeFlatOptions(t *testing.T) {
	raw := &RawQuizResponse{
		Questions: []string{"1. First?", "2. Second?"},
		Options: RawOptions{
			Shape: OptionsShapeFlat,
			Entries: []string{
				"A-one", "B-two", "C-three", "D-four",
				"A-five", "B-six", "C-seven", "D-eight",
			},
		},
		Answers: []string{"A", "C"},
	}

	content, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	wantOptions := [][]string{
		{"one", "two", "three", "four"},
		{"five", "six", "seven", "eight"},
	}
	if !reflect.DeepEqual(content.Options, wantOptions) {
		t.Errorf("options = %v, want %v", content.Options, wantOptions)
	}
}

func TestNormalizeMissingMarkerLeavesEmptySlot(t *testing.T) {
	raw := &RawQuizResponse{
		Questions: []string{"1. Only question?"},
		Options: RawOptions{
			Shape:   OptionsShapeEmbedded,
			Entries: []string{"A-yes B-no D-maybe"},
		},
		Answers: []string{"A"},
	}

	content, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	want := []string{"yes", "no", "", "maybe"}
	if !reflect.DeepEqual(content.Options[0], want) {
		t.Errorf("options[0] = %v, want %v", content.Options[0], want)
	}
}

func TestNormalizeKeepsNonOrdinalHead(t *testing.T) {
	raw := embeddedRaw()
	raw.Questions[0] = "Why does the narrator return home?"

	content, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if content.Questions[0] != "Why does the narrator return home?" {
		t.Errorf("question mangled: %q", content.Questions[0])
	}
}

func TestNormalizeQuestionWithoutSeparator(t *testing.T) {
	raw := embeddedRaw()
	raw.Questions[0] = "single-token"

	if _, err := Normalize(raw); !errors.Is(err, ErrMalformedQuestion) {
		t.Fatalf("err = %v, want ErrMalformedQuestion", err)
	}
}

func TestNormalizeCountMismatchFailsLoud(t *testing.T) {
	raw := embeddedRaw()
	raw.Answers = raw.Answers[:1]

	if _, err := Normalize(raw); !errors.Is(err, ErrInconsistentQuizShape) {
		t.Fatalf("err = %v, want ErrInconsistentQuizShape", err)
	}
}

func TestNormalizeEmptyQuizFails(t *testing.T) {
	raw := &RawQuizResponse{}
	if _, err := Normalize(raw); !errors.Is(err, ErrInconsistentQuizShape) {
		t.Fatalf("err = %v, want ErrInconsistentQuizShape", err)
	}
}

func TestNormalizeDefaultsMinutes(t *testing.T) {
	raw := embeddedRaw()
	raw.MinutesToAnswer = 0

	content, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if content.MinutesToAnswer != model.DefaultMinutesToAnswer {
		t.Errorf("minutes = %d, want default %d", content.MinutesToAnswer, model.DefaultMinutesToAnswer)
	}
}

func TestDecodeRawMissingKeys(t *testing.T) {
	body := []byte(`{"questions": ["1. Q?"], "options": ["A-a B-b C-c D-d"]}`)
	if _, err := DecodeRaw(body); !errors.Is(err, ErrMissingKeys) {
		t.Fatalf("err = %v, want ErrMissingKeys", err)
	}
}

func TestDecodeRawObjectVariants(t *testing.T) {
	body := []byte(`{
		"questions": ["1. Q?"],
		"options": [{"options": "A-a B-b C-c D-d"}],
		"answers": [{"answer": "C-c"}]
	}`)

	raw, err := DecodeRaw(body)
	if err != nil {
		t.Fatalf("DecodeRaw returned error: %v", err)
	}
	if raw.Options.Shape != OptionsShapeEmbedded {
		t.Errorf("shape = %s, want EMBEDDED", raw.Options.Shape)
	}
	if raw.Answers[0] != "C-c" {
		t.Errorf("answer = %q, want C-c", raw.Answers[0])
	}
}

func TestProbeOptionsShape(t *testing.T) {
	cases := []struct {
		name    string
		entries []string
		want    OptionsShape
	}{
		{"embedded blob", []string{"A-a B-b C-c D-d"}, OptionsShapeEmbedded},
		{"flat multiple of four", []string{"A-a", "B-b", "C-c", "D-d"}, OptionsShapeFlat},
		{"single-marker non-multiple falls back", []string{"A-a", "B-b", "C-c"}, OptionsShapeEmbedded},
		{"empty falls back", nil, OptionsShapeEmbedded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := probeOptionsShape(tc.entries); got != tc.want {
				t.Errorf("probe(%v) = %s, want %s", tc.entries, got, tc.want)
			}
		})
	}
}
