package domain

import (
	"strings"
	"time"
)

// SessionMetadataVersion is written into every persisted metadata document.
const SessionMetadataVersion = 1

// SessionMetadata is the typed document stored alongside a capture session.
type SessionMetadata struct {
	SchemaVersion int           `json:"schemaVersion"`
	Hints         CaptureHints  `json:"hints"`
	Pipeline      PipelineState `json:"pipeline"`
	Resolver      ResolverState `json:"resolver"`
}

// NewSessionMetadata returns the document for a freshly started session.
func NewSessionMetadata(hints CaptureHints) SessionMetadata {
	return SessionMetadata{
		SchemaVersion: SessionMetadataVersion,
		Hints:         hints.Normalize(),
		Pipeline: PipelineState{
			Status: PipelineAwaitingFrames,
			Ingest: IngestCounters{ByType: map[FrameType]int{}},
		},
		Resolver: ResolverState{Step: StepAwaitingFrames},
	}
}

// CaptureHints are user-supplied or answer-derived identifying facts.
type CaptureHints struct {
	Brand     string `json:"brand,omitempty"`
	ShadeName string `json:"shadeName,omitempty"`
	GTIN      string `json:"gtin,omitempty"`
	Hex       string `json:"hex,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Normalize trims every field.
func (h CaptureHints) Normalize() CaptureHints {
	return CaptureHints{
		Brand:     strings.TrimSpace(h.Brand),
		ShadeName: strings.TrimSpace(h.ShadeName),
		GTIN:      strings.TrimSpace(h.GTIN),
		Hex:       strings.TrimSpace(h.Hex),
		Source:    strings.TrimSpace(h.Source),
	}
}

// Empty reports whether no identifying hint is present.
func (h CaptureHints) Empty() bool {
	return h.Brand == "" && h.ShadeName == "" && h.GTIN == "" && h.Hex == ""
}

// PipelineStatus tracks frame ingestion progress for a session.
type PipelineStatus string

const (
	PipelineAwaitingFrames   PipelineStatus = "awaiting_frames"
	PipelineReadyForFinalize PipelineStatus = "ready_for_finalize"
	PipelineResolved         PipelineStatus = "resolved"
	PipelineFailed           PipelineStatus = "failed"
)

type PipelineState struct {
	Status   PipelineStatus `json:"status"`
	Ingest   IngestCounters `json:"ingest"`
	Finalize FinalizeState  `json:"finalize"`
}

// IngestCounters summarize frames received so far.
type IngestCounters struct {
	FramesReceived       int               `json:"framesReceived"`
	ByType               map[FrameType]int `json:"byType"`
	FramesWithEvidence   int               `json:"framesWithEvidence"`
	LastFrameHadEvidence bool              `json:"lastFrameHadEvidence"`
	LastFrameAt          *time.Time        `json:"lastFrameAt,omitempty"`
}

// FinalizeState records finalize attempts and the evidence they saw.
// Attempt counts every call; Evaluations counts only the calls that ran the
// matcher, and is what the attempt cap applies to.
type FinalizeState struct {
	Attempt       int        `json:"attempt"`
	Evaluations   int        `json:"evaluations"`
	LastAttemptAt *time.Time `json:"lastAttemptAt,omitempty"`
	// EvidenceFingerprint is compared on re-finalize to detect new evidence.
	EvidenceFingerprint string `json:"evidenceFingerprint,omitempty"`
}

// ResolverStep names the last resolver decision.
type ResolverStep string

const (
	StepAwaitingFrames              ResolverStep = "awaiting_frames"
	StepAwaitingBrandShade          ResolverStep = "awaiting_brand_shade"
	StepAwaitingCandidateSelection  ResolverStep = "awaiting_candidate_selection"
	StepMatchedByBarcode            ResolverStep = "matched_by_barcode"
	StepMatchedByShadeSimilarity    ResolverStep = "matched_by_shade_similarity"
	StepMatchedByCandidateSelection ResolverStep = "matched_by_candidate_selection"
	StepQuestionSkipped             ResolverStep = "question_skipped"
	StepFinalizeAttemptsExhausted   ResolverStep = "finalize_attempts_exhausted"
)

type ResolverState struct {
	Step ResolverStep `json:"step"`
	// Candidates backs the open candidate_select question, in option order.
	Candidates      []CandidateRef       `json:"candidates,omitempty"`
	InventoryItemID int64                `json:"inventoryItemId,omitempty"`
	Audit           []ResolverAuditEntry `json:"audit"`
}

// CandidateRef is one ranked catalog candidate shown to the user.
type CandidateRef struct {
	ShadeID int64   `json:"shadeId"`
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Signal  string  `json:"signal"`
}

// ResolverAuditEntry is appended on every finalize and answer.
type ResolverAuditEntry struct {
	At         time.Time      `json:"at"`
	Action     string         `json:"action"`
	Attempt    int            `json:"attempt,omitempty"`
	Step       ResolverStep   `json:"step"`
	Status     CaptureStatus  `json:"status"`
	Signal     string         `json:"signal,omitempty"`
	TopScore   float64        `json:"topScore,omitempty"`
	FrameCount int            `json:"frameCount"`
	Scores     []CandidateRef `json:"scores,omitempty"`
	Note       string         `json:"note,omitempty"`
}

// FrameQualityVersion is written into every persisted frame quality document.
const FrameQualityVersion = 1

// FrameQuality is the typed document stored with a frame.
type FrameQuality struct {
	SchemaVersion int            `json:"schemaVersion"`
	Raw           FrameHints     `json:"raw"`
	Extracted     FrameExtracted `json:"extracted"`
}

// FrameHints are client-side detections sent with a frame.
type FrameHints struct {
	GTIN       string   `json:"gtin,omitempty"`
	Barcode    string   `json:"barcode,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	ShadeName  string   `json:"shadeName,omitempty"`
	Hex        string   `json:"hex,omitempty"`
	Sharpness  *float64 `json:"sharpness,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
}

// Extraction sources.
const (
	ExtractedFromRequest      = "request_quality"
	ExtractedFromHexDetection = "hex_detection"
)

// FrameExtracted holds evidence the resolver reads from one frame.
type FrameExtracted struct {
	GTIN      string `json:"gtin,omitempty"`
	Brand     string `json:"brand,omitempty"`
	ShadeName string `json:"shadeName,omitempty"`
	Hex       string `json:"hex,omitempty"`
	Source    string `json:"source,omitempty"`
}

// HasEvidence reports whether the frame contributes a usable signal.
func (e FrameExtracted) HasEvidence() bool {
	return e.GTIN != "" || e.Brand != "" || e.ShadeName != "" || e.Hex != ""
}
