package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ceevent "github.com/cloudevents/sdk-go/v2/event"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

// Queue envelope attributes.
const (
	JobEventType   = "com.lacquer.ingestion.job.requested"
	JobEventSource = "/ingestion/jobs"
)

// EncodeJobMessage wraps msg in a structured-mode CloudEvent.
func EncodeJobMessage(msg domain.IngestionQueueMessage, at time.Time) ([]byte, error) {
	event := ceevent.New()
	event.SetID(msg.JobID)
	event.SetSource(JobEventSource)
	event.SetType(JobEventType)
	event.SetSubject(string(msg.Request.Source))
	event.SetTime(at)
	if err := event.SetData(ceevent.ApplicationJSON, msg); err != nil {
		return nil, fmt.Errorf("encode job message: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate job event: %w", err)
	}
	return json.Marshal(event)
}

// wireJobMessage tolerates a numeric userId so the value can be validated
// after the job id is known. The job id is read separately.
type wireJobMessage struct {
	UserID           json.RawMessage         `json:"userId"`
	QueuedAt         string                  `json:"queuedAt"`
	Request          domain.JobRequest       `json:"request"`
	RequestedMetrics domain.RequestedMetrics `json:"requestedMetrics"`
}

// DecodeJobMessage reads a CloudEvent envelope or a bare message body. When
// the body names a job but the rest does not decode, the returned message
// still carries that job id alongside the error.
func DecodeJobMessage(body []byte) (domain.IngestionQueueMessage, error) {
	var probe struct {
		SpecVersion string `json:"specversion"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return domain.IngestionQueueMessage{}, fmt.Errorf("%w: body is not JSON: %v", ErrInvalidPayload, err)
	}

	data := body
	if probe.SpecVersion != "" {
		var event ceevent.Event
		if err := json.Unmarshal(body, &event); err != nil {
			return domain.IngestionQueueMessage{}, fmt.Errorf("%w: malformed cloudevent: %v", ErrInvalidPayload, err)
		}
		if event.Type() != JobEventType {
			return domain.IngestionQueueMessage{}, fmt.Errorf("%w: unexpected event type %q", ErrInvalidPayload, event.Type())
		}
		data = event.Data()
	}

	var ids struct {
		JobID json.RawMessage `json:"jobId"`
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return domain.IngestionQueueMessage{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	jobID := rawString(ids.JobID)

	var wire wireJobMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.IngestionQueueMessage{JobID: jobID}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return domain.IngestionQueueMessage{
		JobID:            jobID,
		UserID:           rawString(wire.UserID),
		QueuedAt:         wire.QueuedAt,
		Request:          wire.Request,
		RequestedMetrics: wire.RequestedMetrics,
	}, nil
}

func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return string(raw)
}
