package ports

import (
	"context"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

// CaptureStore runs capture work inside one serialized transaction.
type CaptureStore interface {
	WithinTx(ctx context.Context, fn func(CaptureTx) error) error
}

// CaptureTx is the transactional view of capture and inventory tables.
type CaptureTx interface {
	InsertSession(ctx context.Context, session domain.CaptureSession) error
	GetSession(ctx context.Context, id string) (domain.CaptureSession, error)
	// UpdateSession persists session if its version still matches and
	// returns it with the bumped version.
	UpdateSession(ctx context.Context, session domain.CaptureSession) (domain.CaptureSession, error)

	// SaveImageAsset stores asset, reusing the session's existing row with the
	// same checksum.
	SaveImageAsset(ctx context.Context, asset domain.ImageAsset) (domain.ImageAsset, error)
	GetImageAsset(ctx context.Context, id string) (domain.ImageAsset, error)

	InsertFrame(ctx context.Context, frame domain.CaptureFrame) error
	GetFrame(ctx context.Context, id string) (domain.CaptureFrame, error)
	ListFrames(ctx context.Context, sessionID string) ([]domain.CaptureFrame, error)
	UpdateFrameQuality(ctx context.Context, frameID string, quality domain.FrameQuality) error

	InsertQuestion(ctx context.Context, question domain.CaptureQuestion) error
	GetOpenQuestion(ctx context.Context, sessionID string) (domain.CaptureQuestion, error)
	CloseQuestion(ctx context.Context, questionID, answer string, at time.Time) error

	Catalog() CatalogLookup
	Inventory() InventoryStore
}
