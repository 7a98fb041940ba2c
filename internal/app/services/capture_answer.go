package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

// AnswerInput is a reply to the open question. Value carries a selected
// option, an option index or free text; Brand and ShadeName carry a
// structured brand_shade answer.
type AnswerInput struct {
	QuestionID string
	Value      string
	Brand      string
	ShadeName  string
}

func (a AnswerInput) empty() bool {
	return strings.TrimSpace(a.Value) == "" && strings.TrimSpace(a.Brand) == "" && strings.TrimSpace(a.ShadeName) == ""
}

// Answer closes the open question with input. A skip leaves the session
// processing without re-evaluating; a candidate choice matches directly;
// any other answer is merged into the evidence and finalize runs again.
func (s *CaptureService) Answer(ctx context.Context, userID int64, sessionID string, input AnswerInput) (CaptureView, error) {
	sessionID, err := parseCaptureID(sessionID)
	if err != nil {
		return CaptureView{}, err
	}
	questionID := strings.TrimSpace(input.QuestionID)
	if questionID == "" {
		return CaptureView{}, fmt.Errorf("%w: questionId is required", ErrInvalidInput)
	}
	if input.empty() {
		return CaptureView{}, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}

	var view CaptureView
	err = s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		session, err := loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		open, err := tx.GetOpenQuestion(ctx, session.ID)
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: session %s is %s", ErrNoOpenQuestion, session.ID, session.Status)
		}
		if err != nil {
			return err
		}
		if open.ID != questionID {
			return fmt.Errorf("%w: open question is %s", ErrQuestionMismatch, open.ID)
		}

		now := s.now()
		value := strings.TrimSpace(input.Value)
		if strings.EqualFold(value, domain.SkipAnswer) {
			if err := tx.CloseQuestion(ctx, open.ID, domain.SkipAnswer, now); err != nil {
				return err
			}
			if err := transition(&session, domain.CaptureStatusProcessing); err != nil {
				return err
			}
			session.Metadata.Resolver.Step = domain.StepQuestionSkipped
			session.Metadata.Resolver.Candidates = nil
			appendAudit(&session.Metadata, domain.ResolverAuditEntry{
				At: now, Action: "answer", Step: domain.StepQuestionSkipped, Status: session.Status,
				FrameCount: session.Metadata.Pipeline.Ingest.FramesReceived, Note: string(open.Key) + " skipped",
			})
			updated, err := tx.UpdateSession(ctx, session)
			view = CaptureView{Session: updated}
			return err
		}

		switch open.Key {
		case domain.QuestionKeyCandidateSelect:
			candidate, err := selectCandidate(session.Metadata.Resolver.Candidates, value)
			if err != nil {
				return err
			}
			shade, err := tx.Catalog().GetShade(ctx, candidate.ShadeID)
			if errors.Is(err, ports.ErrNotFound) {
				return fmt.Errorf("%w: selected shade %d is no longer in the catalog", ErrNotActionable, candidate.ShadeID)
			}
			if err != nil {
				return fmt.Errorf("load selected shade %d: %w", candidate.ShadeID, err)
			}
			if err := tx.CloseQuestion(ctx, open.ID, candidate.Label, now); err != nil {
				return err
			}
			if err := transition(&session, domain.CaptureStatusProcessing); err != nil {
				return err
			}
			if err := s.acceptMatch(ctx, tx, &session, shade, domain.StepMatchedByCandidateSelection); err != nil {
				return err
			}
			score := candidate.Score
			session.TopConfidence = &score
			appendAudit(&session.Metadata, domain.ResolverAuditEntry{
				At: now, Action: "answer", Step: domain.StepMatchedByCandidateSelection, Status: session.Status,
				Signal: candidate.Signal, TopScore: candidate.Score,
				FrameCount: session.Metadata.Pipeline.Ingest.FramesReceived, Scores: []domain.CandidateRef{candidate},
			})
			updated, err := tx.UpdateSession(ctx, session)
			view = CaptureView{Session: updated}
			return err

		case domain.QuestionKeyBrandShade:
			brand, shadeName, err := parseBrandShade(input)
			if err != nil {
				return err
			}
			session.Metadata.Hints.Brand = brand
			session.Metadata.Hints.ShadeName = shadeName
			answer := shadeName
			if brand != "" {
				answer = brand + " - " + shadeName
			}
			if err := tx.CloseQuestion(ctx, open.ID, answer, now); err != nil {
				return err
			}

		default:
			if err := tx.CloseQuestion(ctx, open.ID, value, now); err != nil {
				return err
			}
		}

		if err := transition(&session, domain.CaptureStatusProcessing); err != nil {
			return err
		}
		view, err = s.finalizeInTx(ctx, tx, session, "answer")
		return err
	})
	if err != nil {
		return CaptureView{}, err
	}
	recordCaptureOutcome(ctx, view.Session)
	return view, nil
}

// selectCandidate resolves a zero-based option index or an exact option label.
func selectCandidate(candidates []domain.CandidateRef, value string) (domain.CandidateRef, error) {
	if index, err := strconv.Atoi(value); err == nil {
		if index < 0 || index >= len(candidates) {
			return domain.CandidateRef{}, fmt.Errorf("%w: option %d is out of range", ErrInvalidInput, index)
		}
		return candidates[index], nil
	}
	for _, candidate := range candidates {
		if strings.EqualFold(candidate.Label, value) {
			return candidate, nil
		}
	}
	return domain.CandidateRef{}, fmt.Errorf("%w: %q is not one of the offered options", ErrInvalidInput, value)
}

var brandShadeSeparators = []string{" - ", "|", "/", ":"}

// parseBrandShade accepts structured fields or "Brand - Shade" style text.
// Text without a separator is taken as the shade name.
func parseBrandShade(input AnswerInput) (string, string, error) {
	brand := strings.TrimSpace(input.Brand)
	shade := strings.TrimSpace(input.ShadeName)
	if brand == "" && shade == "" {
		value := strings.TrimSpace(input.Value)
		shade = value
		for _, sep := range brandShadeSeparators {
			if left, right, ok := strings.Cut(value, sep); ok {
				brand, shade = strings.TrimSpace(left), strings.TrimSpace(right)
				break
			}
		}
	}
	if shade == "" {
		return "", "", fmt.Errorf("%w: shade name is required", ErrInvalidInput)
	}
	return brand, shade, nil
}

// DetectFrameHex estimates the color of a stored frame image and merges it
// into the frame's extracted evidence. The detector runs outside any
// transaction.
func (s *CaptureService) DetectFrameHex(ctx context.Context, userID int64, sessionID, frameID string) (domain.CaptureFrame, error) {
	sessionID, err := parseCaptureID(sessionID)
	if err != nil {
		return domain.CaptureFrame{}, err
	}
	if s.detector == nil {
		return domain.CaptureFrame{}, fmt.Errorf("%w: color detection is not configured", ErrNotActionable)
	}

	var image ports.ImageInput
	err = s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		session, err := loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		frame, err := loadSessionFrame(ctx, tx, session.ID, frameID)
		if err != nil {
			return err
		}
		if frame.ImageAssetID == "" {
			return fmt.Errorf("%w: frame %s has no image", ErrNotActionable, frame.ID)
		}
		asset, err := tx.GetImageAsset(ctx, frame.ImageAssetID)
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: image of frame %s is missing", ErrNotActionable, frame.ID)
		}
		if err != nil {
			return err
		}
		image = ports.ImageInput{Data: asset.Data, MimeType: asset.MimeType}
		if asset.External() {
			image.URL = asset.StorageRef
		}
		if len(image.Data) == 0 && image.URL == "" {
			return fmt.Errorf("%w: image of frame %s has no readable content", ErrNotActionable, frame.ID)
		}
		return nil
	})
	if err != nil {
		return domain.CaptureFrame{}, err
	}

	raw, err := s.detector.DetectHex(ctx, image)
	if err != nil {
		return domain.CaptureFrame{}, fmt.Errorf("%w: color detection failed: %v", ErrNotActionable, err)
	}
	detected, ok := domain.NormalizeHex(raw)
	if !ok {
		return domain.CaptureFrame{}, fmt.Errorf("%w: color detection returned %q", ErrNotActionable, raw)
	}

	var frame domain.CaptureFrame
	err = s.store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		session, err := loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return fmt.Errorf("%w: session is %s", ErrSessionTerminal, session.Status)
		}
		frame, err = loadSessionFrame(ctx, tx, session.ID, frameID)
		if err != nil {
			return err
		}
		hadEvidence := frame.Quality.Extracted.HasEvidence()
		frame.Quality.Extracted.Hex = detected
		if frame.Quality.Extracted.Source == "" {
			frame.Quality.Extracted.Source = domain.ExtractedFromHexDetection
		}
		if err := tx.UpdateFrameQuality(ctx, frame.ID, frame.Quality); err != nil {
			return err
		}
		if hadEvidence {
			return nil
		}
		ingest := &session.Metadata.Pipeline.Ingest
		ingest.FramesWithEvidence++
		if session.Metadata.Pipeline.Status == domain.PipelineAwaitingFrames {
			session.Metadata.Pipeline.Status = domain.PipelineReadyForFinalize
		}
		_, err = tx.UpdateSession(ctx, session)
		return err
	})
	if err != nil {
		return domain.CaptureFrame{}, err
	}
	return frame, nil
}

func loadSessionFrame(ctx context.Context, tx ports.CaptureTx, sessionID, frameID string) (domain.CaptureFrame, error) {
	frame, err := tx.GetFrame(ctx, strings.TrimSpace(frameID))
	if errors.Is(err, ports.ErrNotFound) || (err == nil && frame.SessionID != sessionID) {
		return domain.CaptureFrame{}, fmt.Errorf("%w: frame %s", ErrCaptureNotFound, frameID)
	}
	return frame, err
}
