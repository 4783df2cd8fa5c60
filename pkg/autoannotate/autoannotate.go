// Package autoannotate proposes annotations for an image by asking a
// local Ollama vision model, yielding suggestions that convert straight
// into export annotations for review.
package autoannotate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/franklin-ai/darwin-v7/pkg/annotation"
	"github.com/franklin-ai/darwin-v7/pkg/export"
)

const defaultPrompt = `Identify every distinct object in this image. Respond with JSON only:
{"suggestions": [{"label": "<class name>", "confidence": <0..1>, "box": {"x": <0..1>, "y": <0..1>, "w": <0..1>, "h": <0..1>}}]}
Box coordinates are normalized to the image dimensions.`

// Box is a normalized bounding box, every coordinate in [0, 1].
type Box struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Suggestion is one proposed annotation from the vision model.
type Suggestion struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Box        Box     `json:"box"`
}

type modelResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Assistant talks to an Ollama vision model.
type Assistant struct {
	client *api.Client
	model  string
}

// New creates an assistant against the given Ollama URL and model name.
func New(ollamaURL, model string) (*Assistant, error) {
	parsed, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Assistant{client: api.NewClient(base, http.DefaultClient), model: model}, nil
}

// Suggest asks the model for annotation suggestions on the raw image
// bytes. Vision models on CPU are slow, so a 5 minute timeout is applied
// when the context has no deadline of its own.
func (a *Assistant) Suggest(ctx context.Context, imgBytes []byte) ([]Suggestion, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: a.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: defaultPrompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := a.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %v", err)
	}
	if responseContent == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return ParseSuggestions(responseContent)
}

// ParseSuggestions extracts suggestions from the model's raw reply,
// tolerating code fences, comments and trailing commas. A reply with no
// usable JSON yields an empty suggestion list rather than an error; a
// model that refuses to answer is not worth failing a pipeline over.
func ParseSuggestions(raw string) ([]Suggestion, error) {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil, nil
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, nil
	}

	kept := parsed.Suggestions[:0]
	for _, s := range parsed.Suggestions {
		if s.Label == "" {
			continue
		}
		s.Box = clampBox(s.Box)
		kept = append(kept, s)
	}
	return kept, nil
}

func clampBox(b Box) Box {
	clamp := func(v float32) float32 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	b.X, b.Y = clamp(b.X), clamp(b.Y)
	b.W, b.H = clamp(b.W), clamp(b.H)
	if b.X+b.W > 1 {
		b.W = 1 - b.X
	}
	if b.Y+b.H > 1 {
		b.H = 1 - b.Y
	}
	return b
}

// sanitizeModelJSON removes code fences, comments, and trailing commas
// from a model reply.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")

	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// ToAnnotations converts suggestions into export annotations in pixel
// space for an image of the given dimensions.
func ToAnnotations(suggestions []Suggestion, width, height uint32) []export.ImageAnnotation {
	annotations := make([]export.ImageAnnotation, 0, len(suggestions))
	for _, s := range suggestions {
		annotations = append(annotations, export.ImageAnnotation{
			Name: s.Label,
			BoundingBox: &annotation.BoundingBox{
				X: s.Box.X * float32(width),
				Y: s.Box.Y * float32(height),
				W: s.Box.W * float32(width),
				H: s.Box.H * float32(height),
			},
		})
	}
	return annotations
}
