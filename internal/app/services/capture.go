package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/observability"
)

const (
	// DefaultMaxFrameBytes caps a decoded data-URL frame.
	DefaultMaxFrameBytes = 8 << 20
	// DefaultMaxFinalizeAttempts caps unmatched finalize evaluations per session.
	DefaultMaxFinalizeAttempts = 20

	maxAuditScores   = 5
	inventorySource  = "capture"
	defaultImageMIME = "text/plain"
)

// CaptureOptions tunes CaptureService.
type CaptureOptions struct {
	MaxFrameBytes       int64
	MaxFinalizeAttempts int
	// HexDetector is optional; without it color recalculation is not actionable.
	HexDetector ports.HexDetector
}

// CaptureService runs the capture session lifecycle: frames in, a catalog
// match or a clarifying question out.
type CaptureService struct {
	store    ports.CaptureStore
	matcher  *ConfidenceMatcher
	detector ports.HexDetector

	maxFrameBytes       int64
	maxFinalizeAttempts int

	now   func() time.Time
	newID func() string
}

// NewCaptureService constructs a capture service.
func NewCaptureService(store ports.CaptureStore, matcher *ConfidenceMatcher, opts CaptureOptions) *CaptureService {
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if opts.MaxFinalizeAttempts <= 0 {
		opts.MaxFinalizeAttempts = DefaultMaxFinalizeAttempts
	}
	return &CaptureService{
		store:               store,
		matcher:             matcher,
		detector:            opts.HexDetector,
		maxFrameBytes:       opts.MaxFrameBytes,
		maxFinalizeAttempts: opts.MaxFinalizeAttempts,
		now:                 func() time.Time { return time.Now().UTC() },
		newID:               uuid.NewString,
	}
}

// UploadTarget tells a client where to send frames of one type.
type UploadTarget struct {
	FrameType domain.FrameType `json:"frameType"`
	Method    string           `json:"method"`
	Path      string           `json:"path"`
}

// CaptureView is a session with its open question, if any.
type CaptureView struct {
	Session  domain.CaptureSession   `json:"session"`
	Question *domain.CaptureQuestion `json:"question,omitempty"`
}

// StartResult is returned when a session is created.
type StartResult struct {
	CaptureView
	UploadTargets []UploadTarget `json:"uploadTargets"`
}

// Start creates a processing session for userID seeded with hints.
func (s *CaptureService) Start(ctx context.Context, userID int64, hints domain.CaptureHints) (StartResult, error) {
	if userID <= 0 {
		return StartResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	hints = hints.Normalize()
	if hints.Hex != "" {
		normalized, ok := domain.NormalizeHex(hints.Hex)
		if !ok {
			return StartResult{}, fmt.Errorf("%w: hex must look like #RRGGBB", ErrInvalidInput)
		}
		hints.Hex = normalized
	}
	hints.GTIN = domain.NormalizeBarcode(hints.GTIN)

	now := s.now()
	session := domain.CaptureSession{
		ID:        s.newID(),
		UserID:    userID,
		Status:    domain.CaptureStatusProcessing,
		Metadata:  domain.NewSessionMetadata(hints),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !hints.Empty() {
		session.Metadata.Pipeline.Status = domain.PipelineReadyForFinalize
	}
	err := s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		return tx.InsertSession(ctx, session)
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("start capture: %w", err)
	}

	path := "/capture/" + session.ID + "/frame"
	targets := make([]UploadTarget, 0, 3)
	for _, frameType := range []domain.FrameType{domain.FrameTypeBarcode, domain.FrameTypeLabel, domain.FrameTypeColor} {
		targets = append(targets, UploadTarget{FrameType: frameType, Method: "POST", Path: path})
	}
	return StartResult{CaptureView: CaptureView{Session: session}, UploadTargets: targets}, nil
}

// AddFrameInput is one uploaded frame.
type AddFrameInput struct {
	FrameType string
	// ImageRef is an http(s) URL, a data URL, or empty for hint-only frames.
	ImageRef string
	Hints    domain.FrameHints
}

// AddFrame stores a frame and its image in one transaction and updates the
// session's ingest counters.
func (s *CaptureService) AddFrame(ctx context.Context, userID int64, sessionID string, input AddFrameInput) (domain.CaptureFrame, CaptureView, error) {
	sessionID, err := parseCaptureID(sessionID)
	if err != nil {
		return domain.CaptureFrame{}, CaptureView{}, err
	}
	frameType, ok := domain.ParseFrameType(input.FrameType)
	if !ok {
		return domain.CaptureFrame{}, CaptureView{}, fmt.Errorf("%w: unsupported frame type %q", ErrInvalidInput, input.FrameType)
	}
	asset, err := s.parseImageRef(input.ImageRef)
	if err != nil {
		return domain.CaptureFrame{}, CaptureView{}, err
	}

	now := s.now()
	frame := domain.CaptureFrame{
		ID:        s.newID(),
		SessionID: sessionID,
		FrameType: frameType,
		Quality:   frameQuality(input.Hints),
		CreatedAt: now,
	}

	var view CaptureView
	err = s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		session, err := loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return fmt.Errorf("%w: session is %s", ErrSessionTerminal, session.Status)
		}

		ingest := &session.Metadata.Pipeline.Ingest
		sequence := ingest.FramesReceived + 1
		if asset != nil {
			asset.SessionID = sessionID
			if !asset.External() {
				asset.StorageRef = fmt.Sprintf("inline://capture/%s/%d", sessionID, sequence)
			}
			saved, err := tx.SaveImageAsset(ctx, *asset)
			if err != nil {
				return err
			}
			frame.ImageAssetID = saved.ID
		}
		if err := tx.InsertFrame(ctx, frame); err != nil {
			return fmt.Errorf("insert frame: %w", err)
		}

		evidence := frame.Quality.Extracted.HasEvidence()
		ingest.FramesReceived = sequence
		if ingest.ByType == nil {
			ingest.ByType = map[domain.FrameType]int{}
		}
		ingest.ByType[frameType]++
		if evidence {
			ingest.FramesWithEvidence++
		}
		ingest.LastFrameHadEvidence = evidence
		ingest.LastFrameAt = &now
		if session.Metadata.Pipeline.Status == domain.PipelineAwaitingFrames &&
			(ingest.FramesWithEvidence > 0 || !session.Metadata.Hints.Empty()) {
			session.Metadata.Pipeline.Status = domain.PipelineReadyForFinalize
		}

		updated, err := tx.UpdateSession(ctx, session)
		if err != nil {
			return err
		}
		view, err = currentView(ctx, tx, updated)
		return err
	})
	if err != nil {
		return domain.CaptureFrame{}, CaptureView{}, err
	}
	return frame, view, nil
}

// Status returns the session and its open question.
func (s *CaptureService) Status(ctx context.Context, userID int64, sessionID string) (CaptureView, error) {
	sessionID, err := parseCaptureID(sessionID)
	if err != nil {
		return CaptureView{}, err
	}
	var view CaptureView
	err = s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		session, err := loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		view, err = currentView(ctx, tx, session)
		return err
	})
	return view, err
}

// Finalize evaluates the accumulated evidence. Calling it again on a matched
// session returns the same match; calling it with unchanged evidence while a
// question is open returns that question.
func (s *CaptureService) Finalize(ctx context.Context, userID int64, sessionID string) (CaptureView, error) {
	sessionID, err := parseCaptureID(sessionID)
	if err != nil {
		return CaptureView{}, err
	}
	var view CaptureView
	err = s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		session, err := loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			view, err = currentView(ctx, tx, session)
			return err
		}
		view, err = s.finalizeInTx(ctx, tx, session, "finalize")
		return err
	})
	if err != nil {
		return CaptureView{}, err
	}
	recordCaptureOutcome(ctx, view.Session)
	return view, nil
}

// finalizeInTx runs one finalize attempt on a non-terminal session and
// persists the result.
func (s *CaptureService) finalizeInTx(ctx context.Context, tx ports.CaptureTx, session domain.CaptureSession, action string) (CaptureView, error) {
	frames, err := tx.ListFrames(ctx, session.ID)
	if err != nil {
		return CaptureView{}, err
	}
	hints := CollectHints(session.Metadata, frames)
	fingerprint := hints.Fingerprint()
	now := s.now()

	meta := &session.Metadata
	meta.Pipeline.Finalize.Attempt++
	meta.Pipeline.Finalize.LastAttemptAt = &now
	attempt := meta.Pipeline.Finalize.Attempt

	if session.Status == domain.CaptureStatusNeedsQuestion {
		open, err := tx.GetOpenQuestion(ctx, session.ID)
		switch {
		case err == nil && fingerprint == meta.Pipeline.Finalize.EvidenceFingerprint:
			appendAudit(meta, domain.ResolverAuditEntry{
				At: now, Action: action, Attempt: attempt, Step: meta.Resolver.Step,
				Status: session.Status, FrameCount: len(frames), Note: "evidence unchanged; question kept",
			})
			updated, err := tx.UpdateSession(ctx, session)
			if err != nil {
				return CaptureView{}, err
			}
			return CaptureView{Session: updated, Question: &open}, nil
		case err == nil:
			if err := tx.CloseQuestion(ctx, open.ID, domain.SupersededAnswer, now); err != nil {
				return CaptureView{}, err
			}
		case !errors.Is(err, ports.ErrNotFound):
			return CaptureView{}, err
		}
		if err := transition(&session, domain.CaptureStatusProcessing); err != nil {
			return CaptureView{}, err
		}
	}

	meta.Pipeline.Finalize.Evaluations++
	if meta.Pipeline.Finalize.Evaluations > s.maxFinalizeAttempts {
		if err := transition(&session, domain.CaptureStatusFailed); err != nil {
			return CaptureView{}, err
		}
		meta.Pipeline.Status = domain.PipelineFailed
		meta.Resolver.Step = domain.StepFinalizeAttemptsExhausted
		meta.Resolver.Candidates = nil
		appendAudit(meta, domain.ResolverAuditEntry{
			At: now, Action: action, Attempt: attempt, Step: meta.Resolver.Step, Status: session.Status,
			FrameCount: len(frames), Note: fmt.Sprintf("gave up after %d finalize evaluations", s.maxFinalizeAttempts),
		})
		updated, err := tx.UpdateSession(ctx, session)
		return CaptureView{Session: updated}, err
	}

	decision, err := s.matcher.Match(ctx, tx.Catalog(), hints)
	if err != nil {
		return CaptureView{}, err
	}
	meta.Pipeline.Finalize.EvidenceFingerprint = fingerprint
	entry := domain.ResolverAuditEntry{
		At: now, Action: action, Attempt: attempt, FrameCount: len(frames), Scores: candidateRefs(decision.Candidates, maxAuditScores),
	}
	if top, ok := decision.Top(); ok {
		score := top.Score
		session.TopConfidence = &score
		entry.Signal = top.Signal
		entry.TopScore = top.Score
	}

	var question *domain.CaptureQuestion
	switch decision.Outcome {
	case OutcomeAutoMatch:
		top, _ := decision.Top()
		step := domain.StepMatchedByShadeSimilarity
		if top.Signal == SignalBarcode {
			step = domain.StepMatchedByBarcode
		}
		if err := s.acceptMatch(ctx, tx, &session, top.Shade, step); err != nil {
			return CaptureView{}, err
		}
	default:
		question = s.buildQuestion(session.ID, decision, now)
		meta.Resolver.Step = questionStep(question.Key)
		meta.Resolver.Candidates = nil
		if question.Key == domain.QuestionKeyCandidateSelect {
			meta.Resolver.Candidates = candidateRefs(decision.Options(), MaxCandidateOptions)
		}
		if err := tx.InsertQuestion(ctx, *question); err != nil {
			return CaptureView{}, err
		}
		if err := transition(&session, domain.CaptureStatusNeedsQuestion); err != nil {
			return CaptureView{}, err
		}
		if meta.Pipeline.Status == domain.PipelineAwaitingFrames && !hints.Empty() {
			meta.Pipeline.Status = domain.PipelineReadyForFinalize
		}
	}
	entry.Step = meta.Resolver.Step
	entry.Status = session.Status
	appendAudit(meta, entry)

	updated, err := tx.UpdateSession(ctx, session)
	if err != nil {
		return CaptureView{}, err
	}
	return CaptureView{Session: updated, Question: question}, nil
}

// acceptMatch links the session to shade and ensures the owner's inventory row.
func (s *CaptureService) acceptMatch(ctx context.Context, tx ports.CaptureTx, session *domain.CaptureSession, shade domain.CatalogShade, step domain.ResolverStep) error {
	item, _, err := tx.Inventory().EnsureInventoryItem(ctx, domain.InventoryItem{
		UserID:    session.UserID,
		ShadeID:   shade.ID,
		Source:    inventorySource,
		SourceRef: session.ID,
	})
	if err != nil {
		return fmt.Errorf("materialize inventory: %w", err)
	}
	if err := transition(session, domain.CaptureStatusMatched); err != nil {
		return err
	}
	shadeID := shade.ID
	session.AcceptedEntityType = domain.AcceptedEntityCatalogShade
	session.AcceptedEntityID = &shadeID
	session.Metadata.Pipeline.Status = domain.PipelineResolved
	session.Metadata.Resolver.Step = step
	session.Metadata.Resolver.Candidates = nil
	session.Metadata.Resolver.InventoryItemID = item.ID
	return nil
}

func (s *CaptureService) buildQuestion(sessionID string, decision MatchDecision, now time.Time) *domain.CaptureQuestion {
	question := &domain.CaptureQuestion{
		ID:        s.newID(),
		SessionID: sessionID,
		Key:       domain.QuestionKey(decision.Outcome),
		Status:    domain.QuestionStatusOpen,
		CreatedAt: now,
	}
	switch decision.Outcome {
	case OutcomeCandidateSelect:
		question.Prompt = "Which of these is your polish?"
		question.Type = domain.QuestionTypeSingleSelect
		for _, candidate := range decision.Options() {
			question.Options = append(question.Options, candidate.Shade.Label())
		}
		question.Options = append(question.Options, domain.SkipAnswer)
	case OutcomeBrandShade:
		question.Prompt = `What brand and shade is it? Answer as "Brand - Shade".`
		question.Type = domain.QuestionTypeFreeText
	default:
		question.Key = domain.QuestionKeyCaptureFrame
		question.Prompt = "Take a clear photo of the barcode or the label on the bottle."
		question.Type = domain.QuestionTypeSingleSelect
		question.Options = []string{domain.DoneAnswer, domain.SkipAnswer}
	}
	return question
}

func questionStep(key domain.QuestionKey) domain.ResolverStep {
	switch key {
	case domain.QuestionKeyCandidateSelect:
		return domain.StepAwaitingCandidateSelection
	case domain.QuestionKeyBrandShade:
		return domain.StepAwaitingBrandShade
	default:
		return domain.StepAwaitingFrames
	}
}

func transition(session *domain.CaptureSession, to domain.CaptureStatus) error {
	if !session.Status.CanTransition(to) {
		return fmt.Errorf("%w: cannot move session from %s to %s", ErrSessionTerminal, session.Status, to)
	}
	session.Status = to
	return nil
}

func appendAudit(meta *domain.SessionMetadata, entry domain.ResolverAuditEntry) {
	meta.Resolver.Audit = append(meta.Resolver.Audit, entry)
}

func candidateRefs(candidates []ScoredCandidate, limit int) []domain.CandidateRef {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]domain.CandidateRef, 0, min(len(candidates), limit))
	for _, candidate := range candidates[:min(len(candidates), limit)] {
		out = append(out, domain.CandidateRef{
			ShadeID: candidate.Shade.ID,
			Label:   candidate.Shade.Label(),
			Score:   candidate.Score,
			Signal:  candidate.Signal,
		})
	}
	return out
}

func loadOwnedSession(ctx context.Context, tx ports.CaptureTx, userID int64, sessionID string) (domain.CaptureSession, error) {
	session, err := tx.GetSession(ctx, sessionID)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.CaptureSession{}, fmt.Errorf("%w: %s", ErrCaptureNotFound, sessionID)
	}
	if err != nil {
		return domain.CaptureSession{}, err
	}
	if session.UserID != userID {
		return domain.CaptureSession{}, fmt.Errorf("%w: %s", ErrCaptureNotFound, sessionID)
	}
	return session, nil
}

func currentView(ctx context.Context, tx ports.CaptureTx, session domain.CaptureSession) (CaptureView, error) {
	view := CaptureView{Session: session}
	if session.Status != domain.CaptureStatusNeedsQuestion {
		return view, nil
	}
	question, err := tx.GetOpenQuestion(ctx, session.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return CaptureView{}, err
	}
	view.Question = &question
	return view, nil
}

func recordCaptureOutcome(ctx context.Context, session domain.CaptureSession) {
	observability.RecordCaptureOutcome(ctx, string(session.Status), string(session.Metadata.Resolver.Step))
}

func parseCaptureID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: capture id must be a UUID", ErrInvalidInput)
	}
	return id.String(), nil
}

func frameQuality(hints domain.FrameHints) domain.FrameQuality {
	extracted := domain.FrameExtracted{
		GTIN:      domain.NormalizeBarcode(hints.GTIN),
		Brand:     strings.TrimSpace(hints.Brand),
		ShadeName: strings.TrimSpace(hints.ShadeName),
	}
	if extracted.GTIN == "" {
		extracted.GTIN = domain.NormalizeBarcode(hints.Barcode)
	}
	if value, ok := domain.NormalizeHex(hints.Hex); ok {
		extracted.Hex = value
	}
	if extracted.HasEvidence() {
		extracted.Source = domain.ExtractedFromRequest
	}
	return domain.FrameQuality{SchemaVersion: domain.FrameQualityVersion, Raw: hints, Extracted: extracted}
}

// parseImageRef validates a frame image reference before any row is written.
// Data URLs are decoded and checksummed; http(s) URLs are kept as references.
func (s *CaptureService) parseImageRef(raw string) (*domain.ImageAsset, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return nil, nil
	}
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "blob:"):
		return nil, fmt.Errorf("%w: blob: URLs only exist inside the browser; upload the image bytes as a data URL", ErrInvalidInput)
	case strings.HasPrefix(lower, "data:"):
		data, mime, err := decodeDataURL(ref)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > s.maxFrameBytes {
			return nil, fmt.Errorf("%w: image is %d bytes, limit is %d", ErrInvalidInput, len(data), s.maxFrameBytes)
		}
		sum := sha256.Sum256(data)
		return &domain.ImageAsset{
			ID:       s.newID(),
			Checksum: hex.EncodeToString(sum[:]),
			ByteSize: int64(len(data)),
			MimeType: mime,
			Data:     data,
		}, nil
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		parsed, err := url.Parse(ref)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("%w: malformed image URL", ErrInvalidInput)
		}
		return &domain.ImageAsset{ID: s.newID(), StorageRef: parsed.String()}, nil
	default:
		return nil, fmt.Errorf("%w: image must be an http(s) or data URL", ErrInvalidInput)
	}
}

// decodeDataURL parses data:[<mime>][;base64],<payload>.
func decodeDataURL(ref string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: data URL has no payload separator", ErrInvalidInput)
	}
	params := strings.Split(header, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if mime == "" {
		mime = defaultImageMIME
	}
	encoded := false
	for _, param := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			encoded = true
		}
	}

	if !encoded {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: data URL payload is not percent-encoded", ErrInvalidInput)
		}
		return []byte(decoded), mime, nil
	}
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: data URL payload is not valid base64", ErrInvalidInput)
	}
	return data, mime, nil
}
