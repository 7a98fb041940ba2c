package routes

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	appservices "github.com/fr0stylo/lacquer/internal/app/services"
)

func startSession(t *testing.T, f routesFixture, hints map[string]string) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/capture/start", hints)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}
	started := decodeBody[appservices.StartResult](t, rec)
	if started.Session.ID == "" || len(started.UploadTargets) == 0 {
		t.Fatalf("unexpected start response: %+v", started)
	}
	return started.Session.ID
}

func TestCaptureRoutesRequireAuth(t *testing.T) {
	f := newRoutesFixture(t, 0)

	rec := f.do(t, http.MethodPost, "/capture/start", map[string]string{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/capture/"+uuid.NewString()+"/status", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on status, got %d", rec.Code)
	}
}

func TestCaptureRoutesBarcodeMatch(t *testing.T) {
	f := newRoutesFixture(t, testUserID)
	shade, _, err := f.store.UpsertShade(context.Background(), domain.CatalogShade{
		Source: string(domain.SourceManualFeed), ExternalID: "essie-1", Brand: "Essie", Name: "Ballet Slippers", GTIN: "1234567890123",
	})
	if err != nil {
		t.Fatalf("seed shade: %v", err)
	}

	id := startSession(t, f, nil)
	rec := f.do(t, http.MethodPost, "/capture/"+id+"/frame", map[string]any{
		"frameType": "barcode",
		"quality":   map[string]string{"gtin": "1234567890123"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add frame: %d %s", rec.Code, rec.Body.String())
	}
	added := decodeBody[addFrameResponse](t, rec)
	if added.FrameID == "" || added.Frame.Quality.Extracted.GTIN != "1234567890123" {
		t.Fatalf("unexpected frame response: %+v", added)
	}

	rec = f.do(t, http.MethodPost, "/capture/"+id+"/finalize", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize: %d %s", rec.Code, rec.Body.String())
	}
	finalized := decodeBody[statusResponse](t, rec)
	if finalized.Status != domain.CaptureStatusMatched || finalized.Session.AcceptedEntityID == nil || *finalized.Session.AcceptedEntityID != shade.ID {
		t.Fatalf("expected barcode match, got %+v", finalized)
	}

	rec = f.do(t, http.MethodGet, "/capture/"+id+"/status", nil)
	if got := decodeBody[statusResponse](t, rec); rec.Code != http.StatusOK || got.Status != domain.CaptureStatusMatched {
		t.Fatalf("status after match: %d %+v", rec.Code, got)
	}

	rec = f.do(t, http.MethodPost, "/capture/"+id+"/frame", map[string]any{"frameType": "label"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("frames on a matched session should conflict, got %d", rec.Code)
	}
}

func TestCaptureRoutesRejectBadInput(t *testing.T) {
	f := newRoutesFixture(t, testUserID)
	id := startSession(t, f, map[string]string{"brand": "OPI"})

	cases := []struct {
		name   string
		method string
		target string
		body   any
		status int
		kind   string
	}{
		{name: "bad uuid", method: http.MethodPost, target: "/capture/not-a-uuid/frame", body: map[string]any{"frameType": "label"}, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "blob url", method: http.MethodPost, target: "/capture/" + id + "/frame", body: map[string]any{"frameType": "label", "imageUrl": "blob:https://app.example/3f1c"}, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "unknown session", method: http.MethodGet, target: "/capture/" + uuid.NewString() + "/status", status: http.StatusNotFound, kind: "not_found"},
		{name: "missing question id", method: http.MethodPost, target: "/capture/" + id + "/answer", body: map[string]any{"answer": "skip"}, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "no open question", method: http.MethodPost, target: "/capture/" + id + "/answer", body: map[string]any{"questionId": uuid.NewString(), "answer": "skip"}, status: http.StatusConflict, kind: "conflict"},
		{name: "bad hex hint", method: http.MethodPost, target: "/capture/start", body: map[string]any{"hex": "purple"}, status: http.StatusBadRequest, kind: "invalid_input"},
	}
	for _, tc := range cases {
		rec := f.do(t, tc.method, tc.target, tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.status, rec.Code, rec.Body.String())
		}
		if got := decodeBody[errorResponse](t, rec); got.Kind != tc.kind || got.Error == "" {
			t.Fatalf("%s: unexpected error body %+v", tc.name, got)
		}
	}
}

func TestCaptureRoutesQuestionLoop(t *testing.T) {
	f := newRoutesFixture(t, testUserID)
	id := startSession(t, f, nil)

	rec := f.do(t, http.MethodPost, "/capture/"+id+"/finalize", nil)
	asked := decodeBody[statusResponse](t, rec)
	if rec.Code != http.StatusOK || asked.Status != domain.CaptureStatusNeedsQuestion || asked.Question == nil {
		t.Fatalf("expected a question, got %d %+v", rec.Code, asked)
	}

	rec = f.do(t, http.MethodPost, "/capture/"+id+"/answer", map[string]any{"questionId": uuid.NewString(), "answer": "skip"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched question should be rejected, got %d", rec.Code)
	}
	if got := decodeBody[errorResponse](t, rec); got.Kind != string(appservices.CaptureErrorQuestionMismatch) {
		t.Fatalf("unexpected error kind %q", got.Kind)
	}

	rec = f.do(t, http.MethodPost, "/capture/"+id+"/answer", map[string]any{"questionId": asked.Question.ID, "answer": "skip"})
	if rec.Code != http.StatusOK {
		t.Fatalf("skip: %d %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[statusResponse](t, rec); got.Status != domain.CaptureStatusProcessing || got.Question != nil {
		t.Fatalf("skip should return to processing without a question: %+v", got)
	}
}

func TestCaptureRoutesDetectHexWithoutDetector(t *testing.T) {
	f := newRoutesFixture(t, testUserID)
	id := startSession(t, f, nil)

	rec := f.do(t, http.MethodPost, "/capture/"+id+"/frame", map[string]any{
		"frameType": "color",
		"imageUrl":  "https://cdn.example.com/frame.jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add frame: %d %s", rec.Code, rec.Body.String())
	}
	frameID := decodeBody[addFrameResponse](t, rec).FrameID

	rec = f.do(t, http.MethodPost, "/capture/"+id+"/frames/"+frameID+"/detect-hex", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without a detector, got %d %s", rec.Code, rec.Body.String())
	}
}
