package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient("http://generator.test/quiz", &http.Client{Transport: rt}, zerolog.Nop())
}

func TestGenerateSendsResourceURLAndUser(t *testing.T) {
	var seen map[string]interface{}

	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &seen)
		resp := http.Response{
			StatusCode: http.StatusOK,
			Body: io.NopCloser(bytes.NewReader([]byte(`{
				"questions": ["1. Q?"],
				"options": ["A-a B-b C-c D-d"],
				"answers": ["A"]
			}`))),
			Header: make(http.Header),
		}
		return &resp, nil
	}))

	raw, err := client.Generate(context.Background(), "https://docs.test/book.pdf", 7)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(raw.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(raw.Questions))
	}
	if seen["resource_url"] != "https://docs.test/book.pdf" {
		t.Errorf("resource_url = %v", seen["resource_url"])
	}
	if seen["id_user"] != "7" {
		t.Errorf("id_user = %v, want \"7\"", seen["id_user"])
	}
}

func TestGenerateNonOKStatusIsUpstreamInvalid(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		resp := http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     make(http.Header),
		}
		return &resp, nil
	}))

	_, err := client.Generate(context.Background(), "https://docs.test/book.pdf", 0)
	if !errors.Is(err, ErrUpstreamInvalid) {
		t.Fatalf("err = %v, want ErrUpstreamInvalid", err)
	}
}

func TestGenerateTransportErrorIsUpstreamInvalid(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}))

	_, err := client.Generate(context.Background(), "https://docs.test/book.pdf", 0)
	if !errors.Is(err, ErrUpstreamInvalid) {
		t.Fatalf("err = %v, want ErrUpstreamInvalid", err)
	}
}

func TestGenerateMissingKeysIsUpstreamInvalid(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		resp := http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(`{"questions": ["1. Q?"]}`))),
			Header:     make(http.Header),
		}
		return &resp, nil
	}))

	_, err := client.Generate(context.Background(), "https://docs.test/book.pdf", 0)
	if !errors.Is(err, ErrUpstreamInvalid) {
		t.Fatalf("err = %v, want ErrUpstreamInvalid", err)
	}
}
