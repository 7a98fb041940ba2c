// Package hexdetect estimates the dominant polish color of a product image
// with a vision-capable language model.
package hexdetect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/config"
	"github.com/fr0stylo/lacquer/internal/observability"
)

// Supported providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

const (
	maxImageBytes = 8 << 20
	systemPrompt  = `You identify nail polish colors. Look at the polish in the bottle, not the cap, label or background.
Reply with only the single dominant polish color as a hex code like #A1B2C3.`
)

// ErrNoHex is returned when the model reply contains no usable color.
var ErrNoHex = errors.New("no hex color in model reply")

// Detector implements ports.HexDetector over a langchaingo model.
type Detector struct {
	llm        llms.Model
	httpClient *http.Client
}

// New builds a detector for the configured provider.
func New(cfg config.HexDetectConfig, client *http.Client) (*Detector, error) {
	if client == nil {
		client = observability.NewHTTPClient(60 * time.Second)
	}
	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case ProviderOllama, "":
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported hex detection provider: %s", cfg.Provider)
	}
	return NewWithModel(model, client), nil
}

// NewWithModel wraps an existing model. client fetches images given by URL.
func NewWithModel(model llms.Model, client *http.Client) *Detector {
	if client == nil {
		client = http.DefaultClient
	}
	return &Detector{llm: model, httpClient: client}
}

// DetectHex returns the detected color as #RRGGBB.
func (d *Detector) DetectHex(ctx context.Context, image ports.ImageInput) (string, error) {
	data, mimeType := image.Data, image.MimeType
	if len(data) == 0 {
		if image.URL == "" {
			return "", fmt.Errorf("image has neither bytes nor url")
		}
		var err error
		data, mimeType, err = d.fetch(ctx, image.URL)
		if err != nil {
			return "", err
		}
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, data),
				llms.TextPart("What is the hex color of this polish?"),
			},
		},
	}
	response, err := d.llm.GenerateContent(ctx, messages, llms.WithTemperature(0), llms.WithMaxTokens(32))
	if err != nil {
		return "", fmt.Errorf("detect hex: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("detect hex: no response choices")
	}
	return ParseHexResponse(response.Choices[0].Content)
}

func (d *Detector) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	mimeType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return data, strings.TrimSpace(mimeType), nil
}

var (
	hashHexPattern = regexp.MustCompile(`#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	bareHexPattern = regexp.MustCompile(`\b[0-9a-fA-F]{6}\b`)
)

// ParseHexResponse extracts the first color code from a model reply,
// preferring one written with a leading '#'.
func ParseHexResponse(text string) (string, error) {
	candidate := hashHexPattern.FindString(text)
	if candidate == "" {
		candidate = bareHexPattern.FindString(text)
	}
	if value, ok := domain.NormalizeHex(candidate); ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoHex, strings.TrimSpace(text))
}

var _ ports.HexDetector = (*Detector)(nil)
