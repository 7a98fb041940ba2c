package hexdetect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/fr0stylo/lacquer/internal/app/ports"
)

type fakeModel struct {
	reply    string
	messages []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestParseHexResponse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
		err   bool
	}{
		{"plain", "#b0152b", "#B0152B", false},
		{"sentence", "The polish is a deep red, roughly #B0152B.", "#B0152B", false},
		{"shorthand", "#abc", "#AABBCC", false},
		{"bare code", "c0ffee", "#C0FFEE", false},
		{"prefers hashed", "model 123456 says #ff0000", "#FF0000", false},
		{"no color", "I cannot see a bottle.", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexResponse(tt.reply)
			if tt.err {
				if !errors.Is(err, ErrNoHex) {
					t.Fatalf("expected ErrNoHex, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseHexResponse(%q) = %q, %v; want %q", tt.reply, got, err, tt.want)
			}
		})
	}
}

func TestDetectHexSendsInlineImage(t *testing.T) {
	t.Parallel()

	model := &fakeModel{reply: "#f4d3d3"}
	got, err := NewWithModel(model, nil).DetectHex(context.Background(), ports.ImageInput{Data: []byte("png-bytes"), MimeType: "image/png"})
	if err != nil {
		t.Fatalf("DetectHex error = %v", err)
	}
	if got != "#F4D3D3" {
		t.Fatalf("unexpected hex %s", got)
	}
	if len(model.messages) != 2 {
		t.Fatalf("expected system and human messages, got %d", len(model.messages))
	}
	image, ok := model.messages[1].Parts[0].(llms.BinaryContent)
	if !ok || image.MIMEType != "image/png" || string(image.Data) != "png-bytes" {
		t.Fatalf("unexpected image part: %#v", model.messages[1].Parts[0])
	}
}

func TestDetectHexFetchesImageURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	model := &fakeModel{reply: "#123456"}
	if _, err := NewWithModel(model, srv.Client()).DetectHex(context.Background(), ports.ImageInput{URL: srv.URL + "/bottle.jpg"}); err != nil {
		t.Fatalf("DetectHex error = %v", err)
	}
	image := model.messages[1].Parts[0].(llms.BinaryContent)
	if image.MIMEType != "image/jpeg" || string(image.Data) != "jpeg-bytes" {
		t.Fatalf("unexpected fetched image: %#v", image)
	}
}
