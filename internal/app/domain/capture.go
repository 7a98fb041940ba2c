package domain

import (
	"strings"
	"time"
)

// CaptureStatus is the lifecycle state of a capture session.
type CaptureStatus string

const (
	// CaptureStatusProcessing accepts frames and is awaiting resolution.
	CaptureStatusProcessing CaptureStatus = "processing"
	// CaptureStatusNeedsQuestion has exactly one open question for the user.
	CaptureStatusNeedsQuestion CaptureStatus = "needs_question"
	// CaptureStatusMatched resolved to a catalog shade.
	CaptureStatusMatched CaptureStatus = "matched"
	// CaptureStatusFailed gave up without a match.
	CaptureStatusFailed CaptureStatus = "failed"
)

// Terminal reports whether the session no longer changes.
func (s CaptureStatus) Terminal() bool {
	return s == CaptureStatusMatched || s == CaptureStatusFailed
}

// CanTransition validates one edge of the session state machine.
func (s CaptureStatus) CanTransition(to CaptureStatus) bool {
	switch s {
	case CaptureStatusProcessing:
		switch to {
		case CaptureStatusProcessing, CaptureStatusNeedsQuestion, CaptureStatusMatched, CaptureStatusFailed:
			return true
		}
	case CaptureStatusNeedsQuestion:
		return to == CaptureStatusProcessing
	}
	return false
}

// FrameType classifies what a capture frame shows.
type FrameType string

const (
	FrameTypeBarcode FrameType = "barcode"
	FrameTypeLabel   FrameType = "label"
	FrameTypeColor   FrameType = "color"
	FrameTypeOther   FrameType = "other"
)

// ParseFrameType normalizes a client frame type. Empty maps to other.
func ParseFrameType(raw string) (FrameType, bool) {
	switch FrameType(strings.ToLower(strings.TrimSpace(raw))) {
	case FrameTypeBarcode:
		return FrameTypeBarcode, true
	case FrameTypeLabel:
		return FrameTypeLabel, true
	case FrameTypeColor:
		return FrameTypeColor, true
	case FrameTypeOther, "":
		return FrameTypeOther, true
	default:
		return "", false
	}
}

// QuestionKey identifies what a capture question asks for.
type QuestionKey string

const (
	// QuestionKeyCaptureFrame asks for another photo.
	QuestionKeyCaptureFrame QuestionKey = "capture_frame"
	// QuestionKeyCandidateSelect asks the user to pick among ranked candidates.
	QuestionKeyCandidateSelect QuestionKey = "candidate_select"
	// QuestionKeyBrandShade asks for typed brand and shade text.
	QuestionKeyBrandShade QuestionKey = "brand_shade"
)

// QuestionType is the answer shape a client should render.
type QuestionType string

const (
	QuestionTypeSingleSelect QuestionType = "single_select"
	QuestionTypeFreeText     QuestionType = "free_text"
)

// QuestionStatus is open until answered, skipped or superseded.
type QuestionStatus string

const (
	QuestionStatusOpen     QuestionStatus = "open"
	QuestionStatusAnswered QuestionStatus = "answered"
)

const (
	// SkipAnswer closes any question without resolving the session.
	SkipAnswer = "skip"
	// DoneAnswer confirms another frame was uploaded.
	DoneAnswer = "done"
	// SupersededAnswer is recorded when new evidence replaces an open question.
	SupersededAnswer = "superseded"
)

// AcceptedEntityCatalogShade marks a session matched to a catalog row.
const AcceptedEntityCatalogShade = "catalog_shade"

// CaptureSession is one user attempt to identify a physical bottle.
type CaptureSession struct {
	ID                 string          `json:"id"`
	UserID             int64           `json:"userId"`
	Status             CaptureStatus   `json:"status"`
	TopConfidence      *float64        `json:"topConfidence,omitempty"`
	AcceptedEntityType string          `json:"acceptedEntityType,omitempty"`
	AcceptedEntityID   *int64          `json:"acceptedEntityId,omitempty"`
	Metadata           SessionMetadata `json:"metadata"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// CaptureFrame is one uploaded image or hint bundle within a session.
type CaptureFrame struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"sessionId"`
	FrameType    FrameType    `json:"frameType"`
	ImageAssetID string       `json:"imageAssetId,omitempty"`
	Quality      FrameQuality `json:"quality"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ImageAsset is stored image bytes or an external reference. Checksum is
// empty for external references.
type ImageAsset struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Checksum   string    `json:"checksum,omitempty"`
	StorageRef string    `json:"storageRef"`
	ByteSize   int64     `json:"byteSize"`
	MimeType   string    `json:"mimeType,omitempty"`
	Data       []byte    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// External reports whether the asset points outside the database.
func (a ImageAsset) External() bool {
	return len(a.Data) == 0 && (strings.HasPrefix(a.StorageRef, "http://") || strings.HasPrefix(a.StorageRef, "https://"))
}

// CaptureQuestion is a prompt the user must answer before resolution continues.
type CaptureQuestion struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"sessionId"`
	Key        QuestionKey    `json:"key"`
	Prompt     string         `json:"prompt"`
	Type       QuestionType   `json:"type"`
	Options    []string       `json:"options,omitempty"`
	Status     QuestionStatus `json:"status"`
	Answer     string         `json:"answer,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	AnsweredAt *time.Time     `json:"answeredAt,omitempty"`
}

// CatalogShade is one canonical polish shade row.
type CatalogShade struct {
	ID         int64     `json:"id"`
	Brand      string    `json:"brand"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku,omitempty"`
	GTIN       string    `json:"gtin,omitempty"`
	Finish     string    `json:"finish,omitempty"`
	Collection string    `json:"collection,omitempty"`
	Hex        string    `json:"hex,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	Source     string    `json:"source"`
	ExternalID string    `json:"externalId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Label is the human-readable option text for a candidate question.
func (s CatalogShade) Label() string {
	brand := strings.TrimSpace(s.Brand)
	name := strings.TrimSpace(s.Name)
	switch {
	case brand == "":
		return name
	case name == "":
		return brand
	default:
		return brand + " - " + name
	}
}

// InventoryItem links a user to a shade they own.
type InventoryItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ShadeID   int64     `json:"shadeId"`
	Source    string    `json:"source"`
	SourceRef string    `json:"sourceRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
