package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	appservices "github.com/fr0stylo/lacquer/internal/app/services"
)

// CaptureRoutes exposes the capture session lifecycle as JSON endpoints.
type CaptureRoutes struct {
	captures    *appservices.CaptureService
	requireAuth echo.MiddlewareFunc
}

// NewCaptureRoutes constructs capture routes guarded by requireAuth.
func NewCaptureRoutes(captures *appservices.CaptureService, requireAuth echo.MiddlewareFunc) *CaptureRoutes {
	return &CaptureRoutes{captures: captures, requireAuth: requireAuth}
}

// RegisterRoutes registers capture routes on the server.
func (r *CaptureRoutes) RegisterRoutes(s *echo.Echo) {
	group := s.Group("/capture", r.requireAuth)
	group.POST("/start", r.handleStart)
	group.POST("/:captureId/frame", r.handleAddFrame)
	group.GET("/:captureId/status", r.handleStatus)
	group.POST("/:captureId/finalize", r.handleFinalize)
	group.POST("/:captureId/answer", r.handleAnswer)
	group.POST("/:captureId/frames/:frameId/detect-hex", r.handleDetectHex)
}

// addFrameRequest carries either ImageURL or ImageDataURL; ImageURL wins
// when both are set.
type addFrameRequest struct {
	FrameType    string            `json:"frameType"`
	ImageURL     string            `json:"imageUrl"`
	ImageDataURL string            `json:"imageDataUrl"`
	Quality      domain.FrameHints `json:"quality"`
}

type addFrameResponse struct {
	FrameID string                  `json:"frameId"`
	Frame   domain.CaptureFrame     `json:"frame"`
	Status  domain.CaptureStatus    `json:"status"`
	View    appservices.CaptureView `json:"capture"`
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Brand      string `json:"brand"`
	ShadeName  string `json:"shadeName"`
}

type statusResponse struct {
	Status   domain.CaptureStatus    `json:"status"`
	Session  domain.CaptureSession   `json:"session"`
	Question *domain.CaptureQuestion `json:"question,omitempty"`
}

func viewResponse(view appservices.CaptureView) statusResponse {
	return statusResponse{Status: view.Session.Status, Session: view.Session, Question: view.Question}
}

func (r *CaptureRoutes) handleStart(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var hints domain.CaptureHints
	if err := c.Bind(&hints); err != nil {
		return badRequest(c, "invalid json payload")
	}
	result, err := r.captures.Start(c.Request().Context(), userID, hints)
	if err != nil {
		return writeCaptureError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (r *CaptureRoutes) handleAddFrame(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var req addFrameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json payload")
	}
	imageRef := strings.TrimSpace(req.ImageURL)
	if imageRef == "" {
		imageRef = strings.TrimSpace(req.ImageDataURL)
	}
	frame, view, err := r.captures.AddFrame(c.Request().Context(), userID, c.Param("captureId"), appservices.AddFrameInput{
		FrameType: req.FrameType,
		ImageRef:  imageRef,
		Hints:     req.Quality,
	})
	if err != nil {
		return writeCaptureError(c, err)
	}
	return c.JSON(http.StatusCreated, addFrameResponse{
		FrameID: frame.ID,
		Frame:   frame,
		Status:  view.Session.Status,
		View:    view,
	})
}

func (r *CaptureRoutes) handleStatus(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	view, err := r.captures.Status(c.Request().Context(), userID, c.Param("captureId"))
	if err != nil {
		return writeCaptureError(c, err)
	}
	return c.JSON(http.StatusOK, viewResponse(view))
}

func (r *CaptureRoutes) handleFinalize(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	view, err := r.captures.Finalize(c.Request().Context(), userID, c.Param("captureId"))
	if err != nil {
		return writeCaptureError(c, err)
	}
	return c.JSON(http.StatusOK, viewResponse(view))
}

func (r *CaptureRoutes) handleAnswer(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json payload")
	}
	if strings.TrimSpace(req.QuestionID) == "" {
		return badRequest(c, "questionId is required")
	}
	view, err := r.captures.Answer(c.Request().Context(), userID, c.Param("captureId"), appservices.AnswerInput{
		QuestionID: req.QuestionID,
		Value:      req.Answer,
		Brand:      req.Brand,
		ShadeName:  req.ShadeName,
	})
	if err != nil {
		return writeCaptureError(c, err)
	}
	return c.JSON(http.StatusOK, viewResponse(view))
}

func (r *CaptureRoutes) handleDetectHex(c echo.Context) error {
	userID, ok := GetAuthUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	frame, err := r.captures.DetectFrameHex(c.Request().Context(), userID, c.Param("captureId"), c.Param("frameId"))
	if err != nil {
		return writeCaptureError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"frameId": frame.ID,
		"hex":     frame.Quality.Extracted.Hex,
		"frame":   frame,
	})
}
