package services

import (
	"errors"

	"github.com/fr0stylo/lacquer/internal/app/ports"
)

var (
	// ErrInvalidInput indicates a malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCaptureNotFound indicates an unknown session, or one owned by another user.
	ErrCaptureNotFound = errors.New("capture session not found")
	// ErrQuestionMismatch indicates the answered question is not the open one.
	ErrQuestionMismatch = errors.New("question does not match the open question")
	// ErrNoOpenQuestion indicates an answer arrived while nothing is being asked.
	ErrNoOpenQuestion = errors.New("no open question")
	// ErrSessionTerminal indicates the session is matched or failed.
	ErrSessionTerminal = errors.New("capture session is closed")
	// ErrNotActionable indicates the request is valid but cannot be carried out.
	ErrNotActionable = errors.New("not actionable")
)

var (
	// ErrUnknownSource indicates a connector source outside the allow-list.
	ErrUnknownSource = errors.New("unknown ingestion source")
	// ErrJobNotFound indicates an unknown ingestion job id.
	ErrJobNotFound = errors.New("ingestion job not found")
	// ErrJobTerminal indicates the job already succeeded, failed or was cancelled.
	ErrJobTerminal = errors.New("ingestion job already finished")
	// ErrInvalidPayload indicates a queue message that can never be processed.
	ErrInvalidPayload = errors.New("invalid ingestion queue payload")
)

// CaptureErrorKind classifies capture failures for transport-specific mapping.
type CaptureErrorKind string

const (
	CaptureErrorUnknown          CaptureErrorKind = "unknown"
	CaptureErrorInvalidInput     CaptureErrorKind = "invalid_input"
	CaptureErrorNotFound         CaptureErrorKind = "not_found"
	CaptureErrorQuestionMismatch CaptureErrorKind = "question_mismatch"
	CaptureErrorConflict         CaptureErrorKind = "conflict"
	CaptureErrorNotActionable    CaptureErrorKind = "not_actionable"
)

// ClassifyCaptureError classifies an error returned by CaptureService.
func ClassifyCaptureError(err error) CaptureErrorKind {
	switch {
	case err == nil:
		return CaptureErrorUnknown
	case errors.Is(err, ErrInvalidInput):
		return CaptureErrorInvalidInput
	case errors.Is(err, ErrCaptureNotFound):
		return CaptureErrorNotFound
	case errors.Is(err, ErrQuestionMismatch):
		return CaptureErrorQuestionMismatch
	case errors.Is(err, ErrNoOpenQuestion), errors.Is(err, ErrSessionTerminal), errors.Is(err, ports.ErrConcurrentUpdate):
		return CaptureErrorConflict
	case errors.Is(err, ErrNotActionable):
		return CaptureErrorNotActionable
	default:
		return CaptureErrorUnknown
	}
}

// JobErrorKind classifies ingestion job failures.
type JobErrorKind string

const (
	JobErrorUnknown        JobErrorKind = "unknown"
	JobErrorUnknownSource  JobErrorKind = "unknown_source"
	JobErrorInvalidInput   JobErrorKind = "invalid_input"
	JobErrorNotFound       JobErrorKind = "not_found"
	JobErrorTerminal       JobErrorKind = "terminal"
	JobErrorInvalidPayload JobErrorKind = "invalid_payload"
)

// ClassifyJobError classifies an error returned by JobService or Worker.
func ClassifyJobError(err error) JobErrorKind {
	switch {
	case err == nil:
		return JobErrorUnknown
	case errors.Is(err, ErrUnknownSource):
		return JobErrorUnknownSource
	case errors.Is(err, ErrInvalidInput):
		return JobErrorInvalidInput
	case errors.Is(err, ErrJobNotFound):
		return JobErrorNotFound
	case errors.Is(err, ErrJobTerminal):
		return JobErrorTerminal
	case errors.Is(err, ErrInvalidPayload):
		return JobErrorInvalidPayload
	default:
		return JobErrorUnknown
	}
}
