package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/db/queries"
)

// WithinTx runs fn in one IMMEDIATE transaction, so concurrent capture
// operations on the same database are serialized. The whole transaction is
// retried while sqlite reports the database busy.
func (s *Store) WithinTx(ctx context.Context, fn func(ports.CaptureTx) error) error {
	return retryOnBusy(ctx, func() error {
		return s.db.WithTx(ctx, func(q *queries.Queries) error {
			return fn(&captureTx{q: q, now: s.now})
		})
	})
}

type captureTx struct {
	q   *queries.Queries
	now func() time.Time
}

func (t *captureTx) Catalog() ports.CatalogLookup {
	return catalogStore{q: t.q, now: t.now}
}

func (t *captureTx) Inventory() ports.InventoryStore {
	return catalogStore{q: t.q, now: t.now}
}

func (t *captureTx) InsertSession(ctx context.Context, session domain.CaptureSession) error {
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("encode session metadata: %w", err)
	}
	return t.q.InsertCaptureSession(ctx, queries.InsertCaptureSessionParams{
		ID:                 session.ID,
		UserID:             session.UserID,
		Status:             string(session.Status),
		TopConfidence:      nullFloat64(session.TopConfidence),
		AcceptedEntityType: session.AcceptedEntityType,
		AcceptedEntityID:   nullInt64(session.AcceptedEntityID),
		Metadata:           string(metadata),
		Version:            max(session.Version, 1),
		CreatedAt:          formatTime(session.CreatedAt),
		UpdatedAt:          formatTime(session.UpdatedAt),
	})
}

func (t *captureTx) GetSession(ctx context.Context, id string) (domain.CaptureSession, error) {
	row, err := t.q.GetCaptureSession(ctx, id)
	if err != nil {
		return domain.CaptureSession{}, mapNotFound(err, "capture session %s", id)
	}
	return sessionFromRow(row)
}

func (t *captureTx) UpdateSession(ctx context.Context, session domain.CaptureSession) (domain.CaptureSession, error) {
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return domain.CaptureSession{}, fmt.Errorf("encode session metadata: %w", err)
	}
	now := t.now()
	rows, err := t.q.UpdateCaptureSession(ctx, queries.UpdateCaptureSessionParams{
		Status:             string(session.Status),
		TopConfidence:      nullFloat64(session.TopConfidence),
		AcceptedEntityType: session.AcceptedEntityType,
		AcceptedEntityID:   nullInt64(session.AcceptedEntityID),
		Metadata:           string(metadata),
		UpdatedAt:          formatTime(now),
		ID:                 session.ID,
		Version:            session.Version,
	})
	if err != nil {
		return domain.CaptureSession{}, fmt.Errorf("update capture session %s: %w", session.ID, err)
	}
	if rows == 0 {
		return domain.CaptureSession{}, fmt.Errorf("capture session %s version %d: %w", session.ID, session.Version, ports.ErrConcurrentUpdate)
	}
	session.Version++
	session.UpdatedAt = parseTime(formatTime(now))
	return session, nil
}

func (t *captureTx) SaveImageAsset(ctx context.Context, asset domain.ImageAsset) (domain.ImageAsset, error) {
	if asset.Checksum != "" {
		row, err := t.q.GetImageAssetByChecksum(ctx, queries.GetImageAssetByChecksumParams{
			SessionID: asset.SessionID,
			Checksum:  nullString(asset.Checksum),
		})
		if err == nil {
			return assetFromRow(row), nil
		}
		if err = mapNotFound(err, "image asset"); !errors.Is(err, ports.ErrNotFound) {
			return domain.ImageAsset{}, err
		}
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = t.now()
	}
	err := t.q.InsertImageAsset(ctx, queries.InsertImageAssetParams{
		ID:         asset.ID,
		SessionID:  asset.SessionID,
		Checksum:   nullString(asset.Checksum),
		StorageRef: asset.StorageRef,
		ByteSize:   asset.ByteSize,
		MimeType:   asset.MimeType,
		Data:       asset.Data,
		CreatedAt:  formatTime(asset.CreatedAt),
	})
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("insert image asset: %w", err)
	}
	return asset, nil
}

func (t *captureTx) GetImageAsset(ctx context.Context, id string) (domain.ImageAsset, error) {
	row, err := t.q.GetImageAsset(ctx, id)
	if err != nil {
		return domain.ImageAsset{}, mapNotFound(err, "image asset %s", id)
	}
	return assetFromRow(row), nil
}

func (t *captureTx) InsertFrame(ctx context.Context, frame domain.CaptureFrame) error {
	quality, err := json.Marshal(frame.Quality)
	if err != nil {
		return fmt.Errorf("encode frame quality: %w", err)
	}
	return t.q.InsertCaptureFrame(ctx, queries.InsertCaptureFrameParams{
		ID:           frame.ID,
		SessionID:    frame.SessionID,
		FrameType:    string(frame.FrameType),
		ImageAssetID: nullString(frame.ImageAssetID),
		Quality:      string(quality),
		CreatedAt:    formatTime(frame.CreatedAt),
	})
}

func (t *captureTx) GetFrame(ctx context.Context, id string) (domain.CaptureFrame, error) {
	row, err := t.q.GetCaptureFrame(ctx, id)
	if err != nil {
		return domain.CaptureFrame{}, mapNotFound(err, "capture frame %s", id)
	}
	return frameFromRow(row)
}

func (t *captureTx) ListFrames(ctx context.Context, sessionID string) ([]domain.CaptureFrame, error) {
	rows, err := t.q.ListCaptureFramesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list capture frames: %w", err)
	}
	out := make([]domain.CaptureFrame, 0, len(rows))
	for _, row := range rows {
		frame, err := frameFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, frame)
	}
	return out, nil
}

func (t *captureTx) UpdateFrameQuality(ctx context.Context, frameID string, quality domain.FrameQuality) error {
	encoded, err := json.Marshal(quality)
	if err != nil {
		return fmt.Errorf("encode frame quality: %w", err)
	}
	return t.q.UpdateCaptureFrameQuality(ctx, queries.UpdateCaptureFrameQualityParams{Quality: string(encoded), ID: frameID})
}

func (t *captureTx) InsertQuestion(ctx context.Context, question domain.CaptureQuestion) error {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("encode question options: %w", err)
	}
	err = t.q.InsertCaptureQuestion(ctx, queries.InsertCaptureQuestionParams{
		ID:           question.ID,
		SessionID:    question.SessionID,
		QuestionKey:  string(question.Key),
		Prompt:       question.Prompt,
		QuestionType: string(question.Type),
		Options:      string(options),
		CreatedAt:    formatTime(question.CreatedAt),
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("session %s already has an open question: %w", question.SessionID, ports.ErrConcurrentUpdate)
	}
	return err
}

func (t *captureTx) GetOpenQuestion(ctx context.Context, sessionID string) (domain.CaptureQuestion, error) {
	row, err := t.q.GetOpenCaptureQuestion(ctx, sessionID)
	if err != nil {
		return domain.CaptureQuestion{}, mapNotFound(err, "open question for session %s", sessionID)
	}
	return questionFromRow(row)
}

func (t *captureTx) CloseQuestion(ctx context.Context, questionID, answer string, at time.Time) error {
	rows, err := t.q.CloseCaptureQuestion(ctx, queries.CloseCaptureQuestionParams{
		Answer:     answer,
		AnsweredAt: nullTime(at),
		ID:         questionID,
	})
	if err != nil {
		return fmt.Errorf("close question %s: %w", questionID, err)
	}
	if rows == 0 {
		return fmt.Errorf("open question %s: %w", questionID, ports.ErrNotFound)
	}
	return nil
}

func sessionFromRow(row queries.CaptureSession) (domain.CaptureSession, error) {
	var metadata domain.SessionMetadata
	if err := json.Unmarshal([]byte(row.Metadata), &metadata); err != nil {
		return domain.CaptureSession{}, fmt.Errorf("decode metadata of session %s: %w", row.ID, err)
	}
	if metadata.Pipeline.Ingest.ByType == nil {
		metadata.Pipeline.Ingest.ByType = map[domain.FrameType]int{}
	}
	session := domain.CaptureSession{
		ID:                 row.ID,
		UserID:             row.UserID,
		Status:             domain.CaptureStatus(row.Status),
		AcceptedEntityType: row.AcceptedEntityType,
		Metadata:           metadata,
		Version:            row.Version,
		CreatedAt:          parseTime(row.CreatedAt),
		UpdatedAt:          parseTime(row.UpdatedAt),
	}
	if row.TopConfidence.Valid {
		value := row.TopConfidence.Float64
		session.TopConfidence = &value
	}
	if row.AcceptedEntityID.Valid {
		value := row.AcceptedEntityID.Int64
		session.AcceptedEntityID = &value
	}
	return session, nil
}

func frameFromRow(row queries.CaptureFrame) (domain.CaptureFrame, error) {
	var quality domain.FrameQuality
	if err := json.Unmarshal([]byte(row.Quality), &quality); err != nil {
		return domain.CaptureFrame{}, fmt.Errorf("decode quality of frame %s: %w", row.ID, err)
	}
	return domain.CaptureFrame{
		ID:           row.ID,
		SessionID:    row.SessionID,
		FrameType:    domain.FrameType(row.FrameType),
		ImageAssetID: row.ImageAssetID.String,
		Quality:      quality,
		CreatedAt:    parseTime(row.CreatedAt),
	}, nil
}

func questionFromRow(row queries.CaptureQuestion) (domain.CaptureQuestion, error) {
	var options []string
	if err := json.Unmarshal([]byte(row.Options), &options); err != nil {
		return domain.CaptureQuestion{}, fmt.Errorf("decode options of question %s: %w", row.ID, err)
	}
	return domain.CaptureQuestion{
		ID:         row.ID,
		SessionID:  row.SessionID,
		Key:        domain.QuestionKey(row.QuestionKey),
		Prompt:     row.Prompt,
		Type:       domain.QuestionType(row.QuestionType),
		Options:    options,
		Status:     domain.QuestionStatus(row.Status),
		Answer:     row.Answer,
		CreatedAt:  parseTime(row.CreatedAt),
		AnsweredAt: parseNullTime(row.AnsweredAt),
	}, nil
}

func assetFromRow(row queries.ImageAsset) domain.ImageAsset {
	return domain.ImageAsset{
		ID:         row.ID,
		SessionID:  row.SessionID,
		Checksum:   row.Checksum.String,
		StorageRef: row.StorageRef,
		ByteSize:   row.ByteSize,
		MimeType:   row.MimeType,
		Data:       row.Data,
		CreatedAt:  parseTime(row.CreatedAt),
	}
}

var _ ports.CaptureStore = (*Store)(nil)
