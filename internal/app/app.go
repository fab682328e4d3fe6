// Package app builds the object graph shared by the server and the CLI from
// a loaded config.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/config"
	"github.com/fleveque/pet-composer/internal/llm"
	"github.com/fleveque/pet-composer/internal/provider"
	"github.com/fleveque/pet-composer/internal/render"
	"github.com/fleveque/pet-composer/internal/service"
)

// App is the wired engine plus its caption collaborators.
type App struct {
	Images   *service.ImageProcessor
	Composer *service.Composer
	Captions *provider.CaptionProvider
	Battles  *service.BattleService // nil when no caption provider has an API key
}

// New loads fonts and theme once and wires the services. recorder may be nil,
// in which case caption calls are not audited.
func New(cfg *config.Config, recorder provider.CallRecorder, logger *zap.Logger) (*App, error) {
	fonts, err := render.LoadFontSet(render.FontPaths{
		Regular: cfg.Fonts.Regular,
		Bold:    cfg.Fonts.Bold,
		Emoji:   cfg.Fonts.Emoji,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}

	theme, err := render.NewTheme(render.ThemeConfig{
		BrandName:      cfg.Brand.Name,
		BrandURL:       cfg.Brand.URL,
		CTAHeadline:    cfg.Brand.CTAHeadline,
		PrimaryColor:   cfg.Brand.PrimaryColor,
		SecondaryColor: cfg.Brand.SecondaryColor,
		AccentColor:    cfg.Brand.AccentColor,
	})
	if err != nil {
		return nil, fmt.Errorf("building theme: %w", err)
	}

	renderer := render.NewRenderer(fonts, theme, render.NewBarcodeQR(), logger)
	renderer.SetMemeMaxWidth(cfg.Render.MemeMaxWidth)

	images := service.NewImageProcessor(cfg.Render.MaxPhotoDimension, logger)
	composer := service.NewComposer(renderer, cfg.Render.JPEGQuality, logger)

	clients := Clients(cfg.LLM, logger)
	captions := provider.NewCaptionProvider(clients, cfg.LLM.RatePerMinute, cfg.LLM.MaxTokens, recorder, logger)

	a := &App{Images: images, Composer: composer, Captions: captions}
	if captions.Available() {
		a.Battles = service.NewBattleService(images, captions, composer, cfg.Battle.MaxVoices, logger)
	} else {
		logger.Warn("no caption provider configured, battles need explicit entries")
	}
	return a, nil
}

// Clients builds LLM clients in provider_order, skipping any without an API key.
func Clients(cfg config.LLMConfig, logger *zap.Logger) []llm.Client {
	var clients []llm.Client
	for _, name := range cfg.ProviderOrder {
		switch name {
		case "anthropic":
			if cfg.Anthropic.APIKey == "" {
				logger.Debug("skipping anthropic: no API key")
				continue
			}
			clients = append(clients, llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
		case "openai":
			if cfg.OpenAI.APIKey == "" {
				logger.Debug("skipping openai: no API key")
				continue
			}
			clients = append(clients, llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
		default:
			logger.Warn("unknown LLM provider in provider_order", zap.String("provider", name))
		}
	}
	return clients
}
