package service

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/model"
	"github.com/fleveque/pet-composer/internal/render"
)

// Composer routes a composition request to the right renderers and encodes
// the result. It keeps no reference to anything it returns; every call
// allocates its own surfaces.
type Composer struct {
	renderer    *render.Renderer
	jpegQuality int
	logger      *zap.Logger
}

// NewComposer creates a Composer. jpegQuality applies to story and battle
// outputs; out-of-range values fall back to render.DefaultJPEGQuality.
func NewComposer(renderer *render.Renderer, jpegQuality int, logger *zap.Logger) *Composer {
	return &Composer{
		renderer:    renderer,
		jpegQuality: jpegQuality,
		logger:      logger,
	}
}

// ComposeMeme produces the standard PNG meme and the 1080x1920 story JPEG
// from the same meme core.
func (c *Composer) ComposeMeme(photo image.Image, req model.MemeRequest) (result *model.MemeResult, err error) {
	defer recoverRender("meme", &err)

	core, err := c.renderer.MemeCore(photo, req)
	if err != nil {
		return nil, renderErr("meme", err)
	}

	meme, err := c.renderer.Meme(core)
	if err != nil {
		return nil, renderErr("meme", err)
	}
	standard, err := render.Encode(meme, model.FormatPNG, 0)
	if err != nil {
		return nil, renderErr("encode", err)
	}

	story, err := c.renderer.Story(core)
	if err != nil {
		return nil, renderErr("story", err)
	}
	storyArtifact, err := render.Encode(story, model.FormatJPEG, c.jpegQuality)
	if err != nil {
		return nil, renderErr("encode", err)
	}

	c.logger.Debug("composed meme",
		zap.Stringer("standard", standard),
		zap.Stringer("story", storyArtifact),
	)
	return &model.MemeResult{Standard: standard, Story: storyArtifact}, nil
}

// ComposeConvo renders the text-thread screenshot once and returns it under
// both output names.
func (c *Composer) ComposeConvo(photo image.Image, req model.ConvoRequest) (result *model.ConvoResult, err error) {
	defer recoverRender("convo", &err)

	img, err := c.renderer.Convo(photo, req)
	if err != nil {
		return nil, renderErr("convo", err)
	}
	artifact, err := render.Encode(img, model.FormatPNG, 0)
	if err != nil {
		return nil, renderErr("encode", err)
	}

	c.logger.Debug("composed convo",
		zap.Int("turns", len(req.Turns)),
		zap.Stringer("artifact", artifact),
	)
	return &model.ConvoResult{Standard: artifact, Story: artifact}, nil
}

// ComposeBattle renders all entries as cards below the photo, as one JPEG.
func (c *Composer) ComposeBattle(photo image.Image, entries []model.BattleEntry) (artifact *model.Artifact, err error) {
	defer recoverRender("battle", &err)

	img, err := c.renderer.Battle(photo, entries)
	if err != nil {
		return nil, renderErr("battle", err)
	}
	artifact, err = render.Encode(img, model.FormatJPEG, c.jpegQuality)
	if err != nil {
		return nil, renderErr("encode", err)
	}

	c.logger.Debug("composed battle",
		zap.Int("entries", len(entries)),
		zap.Stringer("artifact", artifact),
	)
	return artifact, nil
}

// renderErr wraps a renderer failure as a RenderError. Invalid requests keep
// their sentinel so callers can tell bad input from a broken render.
func renderErr(op string, err error) error {
	if errors.Is(err, model.ErrInvalidRequest) {
		return err
	}
	return &model.RenderError{Op: op, Err: err}
}

// recoverRender converts a panic inside a render step into a RenderError.
// It must be deferred directly by a function with a named error result.
func recoverRender(op string, err *error) {
	if r := recover(); r != nil {
		*err = &model.RenderError{Op: op, Err: fmt.Errorf("panic: %v", r)}
	}
}
