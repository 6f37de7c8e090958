// Package imageedit applies natural-language edits to thumbnails through
// the Gemini generateContent API and optionally stores the result in an
// S3-compatible bucket.
package imageedit

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/httpx"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
)

// Defaults for EditorOptions.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash-exp"
	DefaultMIME    = "image/png"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("image edit disabled: GEMINI_API_KEY is not configured")

	// ErrNoResult is returned when the model answered without an image.
	ErrNoResult = errors.New("image edit returned no image")

	// ErrInvalidImage is returned for empty or non-base64 input.
	ErrInvalidImage = errors.New("invalid image: expected base64 or data URL")

	// ErrEmptyPrompt is returned when the instruction is blank.
	ErrEmptyPrompt = errors.New("edit instruction is empty")
)

// Editor calls Gemini to edit images.
type Editor struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	model   string
	logger  *log.Logger
}

// EditorOptions configures Editor.
type EditorOptions struct {
	Client  *httpx.Client
	BaseURL string
	APIKey  string
	Model   string // Default: gemini-2.0-flash-exp
	Logger  *log.Logger
}

// NewEditor creates a Gemini editor. A missing key yields a disabled editor.
func NewEditor(opts EditorOptions) *Editor {
	e := &Editor{
		client:  opts.Client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		logger:  opts.Logger,
	}
	if e.client == nil {
		// Generation is slow; retries stay low to bound latency.
		e.client = httpx.NewClient(httpx.WithTimeout(60*time.Second), httpx.WithMaxRetries(1))
	}
	if e.baseURL == "" {
		e.baseURL = DefaultBaseURL
	}
	if e.model == "" {
		e.model = DefaultModel
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.apiKey == "" {
		e.logger.Println("Gemini API key missing, image edit disabled")
	}
	return e
}

// Enabled reports whether an API key is configured.
func (e *Editor) Enabled() bool { return e.apiKey != "" }

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Edit applies instruction to image (raw base64 or a data: URL) and returns
// the edited image as a PNG data URL.
func (e *Editor) Edit(ctx context.Context, image, instruction string) (result string, err error) {
	defer func() { observability.RecordImageEdit(resultLabel(err)) }()

	if !e.Enabled() {
		return "", ErrDisabled
	}
	if strings.TrimSpace(instruction) == "" {
		return "", ErrEmptyPrompt
	}
	mime, data, err := SplitDataURL(image)
	if err != nil {
		return "", err
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mime, Data: data}},
				{Text: Prompt(instruction)},
			},
		}},
		GenerationConfig: generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		e.baseURL, url.PathEscape(e.model), url.QueryEscape(e.apiKey))

	var resp generateResponse
	if err := e.client.PostJSON(ctx, endpoint, nil, req, &resp); err != nil {
		return "", fmt.Errorf("gemini generateContent: %w: %v", domain.ErrUpstreamUnavailable, err)
	}

	if len(resp.Candidates) == 0 {
		return "", ErrNoResult
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return "data:" + DefaultMIME + ";base64," + p.InlineData.Data, nil
		}
	}
	return "", ErrNoResult
}

// Prompt wraps the operator instruction.
func Prompt(instruction string) string {
	return fmt.Sprintf("Apply this modification to the image: %s. Return the resulting image directly.", strings.TrimSpace(instruction))
}

// SplitDataURL returns the MIME type and base64 payload of image. Raw base64
// input is treated as PNG.
func SplitDataURL(image string) (mime, data string, err error) {
	image = strings.TrimSpace(image)
	mime = DefaultMIME

	if strings.HasPrefix(image, "data:") {
		header, payload, ok := strings.Cut(image, ",")
		if !ok {
			return "", "", ErrInvalidImage
		}
		header = strings.TrimPrefix(header, "data:")
		if m, _, _ := strings.Cut(header, ";"); m != "" {
			mime = m
		}
		image = payload
	}

	if image == "" {
		return "", "", ErrInvalidImage
	}
	if _, err := base64.StdEncoding.DecodeString(image); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return mime, image, nil
}

// Decode returns the raw bytes of a data URL or base64 payload.
func Decode(image string) ([]byte, error) {
	_, data, err := SplitDataURL(image)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(data)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	case errors.Is(err, ErrNoResult):
		return "no_result"
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrEmptyPrompt):
		return "invalid"
	default:
		return "error"
	}
}
