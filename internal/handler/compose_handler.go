package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/middleware"
	"github.com/fleveque/pet-composer/internal/model"
	"github.com/fleveque/pet-composer/internal/provider"
	"github.com/fleveque/pet-composer/internal/service"
)

// ComposeHandler exposes the composition facade over HTTP. Requests come in
// either as multipart forms (photo file + text fields) or as JSON with the
// photo base64-encoded.
type ComposeHandler struct {
	images        *service.ImageProcessor
	composer      *service.Composer
	battles       *service.BattleService // nil when no caption provider is configured
	defaultVoices []string
	maxVoices     int
	maxUpload     int64
	logger        *zap.Logger
}

// NewComposeHandler creates a new ComposeHandler. battles may be nil.
// maxVoices bounds both voice lists and explicit entries; <= 0 uses
// service.DefaultMaxBattleVoices.
func NewComposeHandler(
	images *service.ImageProcessor,
	composer *service.Composer,
	battles *service.BattleService,
	defaultVoices []string,
	maxVoices int,
	maxUploadBytes int64,
	logger *zap.Logger,
) *ComposeHandler {
	return &ComposeHandler{
		images:        images,
		composer:      composer,
		battles:       battles,
		defaultVoices: defaultVoices,
		maxVoices:     maxVoices,
		maxUpload:     maxUploadBytes,
		logger:        logger,
	}
}

// artifactJSON is the wire form of an artifact.
type artifactJSON struct {
	Format string `json:"format"`
	MIME   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   string `json:"data"` // base64
}

func toJSON(a *model.Artifact) artifactJSON {
	return artifactJSON{
		Format: string(a.Format),
		MIME:   a.Format.MIME(),
		Width:  a.Width,
		Height: a.Height,
		Data:   base64.StdEncoding.EncodeToString(a.Data),
	}
}

// composeRequest is the JSON body accepted by every compose endpoint.
// Fields that don't apply to a mode are ignored.
type composeRequest struct {
	Photo       string              `json:"photo"` // base64
	Top         string              `json:"top"`
	Bottom      string              `json:"bottom"`
	Anchor      string              `json:"anchor"`
	ContactName string              `json:"contact"`
	Turns       []model.MessageTurn `json:"turns"`
	Entries     []model.BattleEntry `json:"entries"`
	Voices      []string            `json:"voices"`
}

// Meme renders the standard meme and the story card.
// Route: POST /api/v1/compose/meme
func (h *ComposeHandler) Meme(c *gin.Context) {
	req, photo, ok := h.parse(c)
	if !ok {
		return
	}
	img, err := h.images.Decode(photo)
	if err != nil {
		h.fail(c, "meme", err)
		return
	}

	result, err := h.composer.ComposeMeme(img, model.MemeRequest{
		Top:    req.Top,
		Bottom: req.Bottom,
		Anchor: model.ParseAnchor(req.Anchor),
	})
	if err != nil {
		h.fail(c, "meme", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": middleware.GetRequestID(c),
		"standard":   toJSON(result.Standard),
		"story":      toJSON(result.Story),
	})
}

// Convo renders the fake text thread.
// Route: POST /api/v1/compose/convo
func (h *ComposeHandler) Convo(c *gin.Context) {
	req, photo, ok := h.parse(c)
	if !ok {
		return
	}
	if len(req.Turns) == 0 {
		h.fail(c, "convo", fmt.Errorf("turns are required: %w", model.ErrInvalidRequest))
		return
	}
	img, err := h.images.Decode(photo)
	if err != nil {
		h.fail(c, "convo", err)
		return
	}

	result, err := h.composer.ComposeConvo(img, model.ConvoRequest{
		ContactName: req.ContactName,
		Turns:       req.Turns,
	})
	if err != nil {
		h.fail(c, "convo", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": middleware.GetRequestID(c),
		"standard":   toJSON(result.Standard),
		"story":      toJSON(result.Story),
	})
}

// Battle renders a caption battle. With entries the captions are used as
// given; otherwise one caption per voice is generated first.
// Route: POST /api/v1/compose/battle
func (h *ComposeHandler) Battle(c *gin.Context) {
	req, photo, ok := h.parse(c)
	if !ok {
		return
	}

	var (
		artifact *model.Artifact
		entries  = req.Entries
		err      error
	)
	if len(entries) > 0 {
		if sizeErr := service.CheckBattleSize(len(entries), h.maxVoices); sizeErr != nil {
			h.fail(c, "battle", sizeErr)
			return
		}
		img, decErr := h.images.Decode(photo)
		if decErr != nil {
			h.fail(c, "battle", decErr)
			return
		}
		artifact, err = h.composer.ComposeBattle(img, entries)
	} else {
		if h.battles == nil {
			h.fail(c, "battle", provider.ErrNoCaptionProviders)
			return
		}
		voices := req.Voices
		if len(voices) == 0 {
			voices = h.defaultVoices
		}
		// Checked here so an oversized list never reaches the LLM fan-out.
		if sizeErr := service.CheckBattleSize(len(voices), h.maxVoices); sizeErr != nil {
			h.fail(c, "battle", sizeErr)
			return
		}
		artifact, entries, err = h.battles.Run(c.Request.Context(), photo, voices)
	}
	if err != nil {
		h.fail(c, "battle", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": middleware.GetRequestID(c),
		"battle":     toJSON(artifact),
		"entries":    entries,
	})
}

// parse reads the request body into a composeRequest plus raw photo bytes.
// On failure it has already written the response.
func (h *ComposeHandler) parse(c *gin.Context) (*composeRequest, []byte, bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	var (
		req   composeRequest
		photo []byte
		err   error
	)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		photo, err = parseJSON(c, &req)
	} else {
		photo, err = parseMultipart(c, &req)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return nil, nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if len(photo) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo is required"})
		return nil, nil, false
	}
	return &req, photo, true
}

func parseJSON(c *gin.Context, req *composeRequest) ([]byte, error) {
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if req.Photo == "" {
		return nil, nil
	}
	// Accept data URLs as well as bare base64.
	encoded := req.Photo
	if i := strings.Index(encoded, ";base64,"); i >= 0 {
		encoded = encoded[i+len(";base64,"):]
	}
	photo, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("photo is not valid base64: %w", err)
	}
	return photo, nil
}

func parseMultipart(c *gin.Context, req *composeRequest) ([]byte, error) {
	req.Top = c.PostForm("top")
	req.Bottom = c.PostForm("bottom")
	req.Anchor = c.PostForm("anchor")
	req.ContactName = c.PostForm("contact")

	if raw := c.PostForm("turns"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Turns); err != nil {
			return nil, fmt.Errorf("turns must be a JSON array: %w", err)
		}
	}
	if raw := c.PostForm("entries"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Entries); err != nil {
			return nil, fmt.Errorf("entries must be a JSON array: %w", err)
		}
	}
	for _, v := range strings.Split(c.PostForm("voices"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			req.Voices = append(req.Voices, v)
		}
	}

	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening photo: %w", err)
	}
	defer f.Close()

	photo, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return photo, nil
}

// fail maps an error to a status code and a JSON body.
func (h *ComposeHandler) fail(c *gin.Context, mode string, err error) {
	var (
		loadErr    *model.ImageLoadError
		renderErr  *model.RenderError
		captionErr *service.CaptionError
	)

	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.As(err, &loadErr):
		status, msg = http.StatusBadRequest, "photo could not be decoded"
	case errors.Is(err, model.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, provider.ErrNoCaptionProviders):
		status, msg = http.StatusServiceUnavailable, "caption generation is not configured"
	case errors.As(err, &captionErr):
		status, msg = http.StatusBadGateway, "caption generation failed"
	case errors.As(err, &renderErr):
		msg = "render failed"
	}

	fields := []zap.Field{
		zap.String("mode", mode),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	}
	if status >= 500 {
		h.logger.Error("composition failed", fields...)
	} else {
		h.logger.Warn("composition rejected", fields...)
	}

	c.JSON(status, gin.H{"error": msg})
}
