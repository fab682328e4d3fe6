// Package main provides the petcomposer CLI: compose artifacts from a local
// photo and write them to disk. Uses Cobra for command parsing.
//
// Run with: go run ./cmd/cli meme --photo cat.jpg --top "..." --bottom "..."
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/app"
	"github.com/fleveque/pet-composer/internal/config"
	"github.com/fleveque/pet-composer/internal/model"
	"github.com/fleveque/pet-composer/internal/service"
	"github.com/fleveque/pet-composer/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs once flags are parsed.
type env struct {
	cfg    *config.Config
	app    *app.App
	fs     *storage.FileSystem
	logger *zap.Logger
	close  func()
}

// rootCmd creates the root command. Cobra builds a tree of commands:
//
//	petcomposer meme --photo cat.jpg --top "..."
//	petcomposer convo --photo cat.jpg --turns turns.json
//	petcomposer battle --photo cat.jpg --voices sassy,dramatic
func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "petcomposer",
		Short:        "Compose shareable pet images",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $PETCOMPOSER_CONFIG_PATH or ./config.yaml)")

	root.AddCommand(memeCmd(&configPath), convoCmd(&configPath), battleCmd(&configPath))
	return root
}

func memeCmd(configPath *string) *cobra.Command {
	var photo, top, bottom, anchor string

	cmd := &cobra.Command{
		Use:   "meme",
		Short: "Render a captioned meme and its story card",
		// RunE returns an error (vs Run which doesn't). Cobra prints it.
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath, false)
			if err != nil {
				return err
			}
			defer e.close()

			img, err := e.decode(photo)
			if err != nil {
				return err
			}
			res, err := e.app.Composer.ComposeMeme(img, model.MemeRequest{
				Top:    top,
				Bottom: bottom,
				Anchor: model.ParseAnchor(anchor),
			})
			if err != nil {
				return err
			}
			return e.write([]namedArtifact{{"standard", res.Standard}, {"story", res.Story}})
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "path to the photo (required)")
	cmd.Flags().StringVar(&top, "top", "", "top caption")
	cmd.Flags().StringVar(&bottom, "bottom", "", "bottom caption")
	cmd.Flags().StringVar(&anchor, "anchor", "center", "where the pet sits: top, center, bottom")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

func convoCmd(configPath *string) *cobra.Command {
	var photo, contact, turnsPath string

	cmd := &cobra.Command{
		Use:   "convo",
		Short: "Render a fake text-message thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(turnsPath)
			if err != nil {
				return fmt.Errorf("reading turns: %w", err)
			}
			var turns []model.MessageTurn
			if err := json.Unmarshal(raw, &turns); err != nil {
				return fmt.Errorf("parsing turns: %w", err)
			}

			e, err := setup(*configPath, false)
			if err != nil {
				return err
			}
			defer e.close()

			img, err := e.decode(photo)
			if err != nil {
				return err
			}
			res, err := e.app.Composer.ComposeConvo(img, model.ConvoRequest{ContactName: contact, Turns: turns})
			if err != nil {
				return err
			}
			return e.write([]namedArtifact{{"standard", res.Standard}, {"story", res.Story}})
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "path to the photo (required)")
	cmd.Flags().StringVar(&contact, "contact", "", "contact name shown in the header")
	cmd.Flags().StringVar(&turnsPath, "turns", "", `JSON file with [{"sender":"pet","text":"..."}] turns (required)`)
	_ = cmd.MarkFlagRequired("photo")
	_ = cmd.MarkFlagRequired("turns")
	return cmd
}

func battleCmd(configPath *string) *cobra.Command {
	var photo string
	var voices, captions []string

	cmd := &cobra.Command{
		Use:   "battle",
		Short: "Render a caption battle, generating captions unless --caption is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath, len(captions) == 0)
			if err != nil {
				return err
			}
			defer e.close()

			if len(voices) == 0 {
				voices = e.cfg.Battle.Voices
			}

			n := len(voices)
			if len(captions) > 0 {
				n = len(captions)
			}
			if err := service.CheckBattleSize(n, e.cfg.Battle.MaxVoices); err != nil {
				return err
			}

			var artifact *model.Artifact
			if len(captions) > 0 {
				// --caption pairs with --voices by position.
				if len(captions) > len(voices) {
					return fmt.Errorf("%d captions but only %d voices", len(captions), len(voices))
				}
				entries := make([]model.BattleEntry, len(captions))
				for i, text := range captions {
					entries[i] = model.BattleEntry{VoiceID: voices[i], Caption: text}
				}
				img, err := e.decode(photo)
				if err != nil {
					return err
				}
				if artifact, err = e.app.Composer.ComposeBattle(img, entries); err != nil {
					return err
				}
			} else {
				if e.app.Battles == nil {
					return fmt.Errorf("no caption provider configured: set an API key or pass --caption")
				}
				data, err := os.ReadFile(photo)
				if err != nil {
					return fmt.Errorf("reading photo: %w", err)
				}
				ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				var entries []model.BattleEntry
				if artifact, entries, err = e.app.Battles.Run(ctx, data, voices); err != nil {
					return err
				}
				for _, en := range entries {
					fmt.Printf("%-10s %s\n", en.VoiceID, en.Caption)
				}
			}
			return e.write([]namedArtifact{{"battle", artifact}})
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "path to the photo (required)")
	cmd.Flags().StringSliceVar(&voices, "voices", nil, "voice ids, comma separated (default from config)")
	cmd.Flags().StringArrayVar(&captions, "caption", nil, "explicit caption, repeatable; skips generation")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

// setup loads config, the logger, and the app. The audit database is only
// opened when captions will be generated.
func setup(configPath string, audit bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// The CLI always uses the development logger.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	closers := []func(){func() { _ = logger.Sync() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var recorder storage.CaptionCallRepository
	if audit {
		db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("opening database: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		recorder = storage.NewCaptionCallRepository(db)
	}

	fs, err := storage.NewFileSystem(cfg.Storage.OutputDir)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	a, err := app.New(cfg, recorder, logger)
	if err != nil {
		closeAll()
		return nil, err
	}

	return &env{cfg: cfg, app: a, fs: fs, logger: logger, close: closeAll}, nil
}

func (e *env) decode(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return e.app.Images.Decode(data)
}

// namedArtifact pairs an artifact with its output file name.
type namedArtifact struct {
	name     string
	artifact *model.Artifact
}

// write stores every artifact under one fresh job directory and prints the
// paths in the order given.
func (e *env) write(artifacts []namedArtifact) error {
	return writeArtifacts(e.fs, uuid.NewString(), os.Stdout, artifacts, e.logger)
}

func writeArtifacts(fs *storage.FileSystem, job string, out io.Writer, artifacts []namedArtifact, logger *zap.Logger) error {
	paths := make([]string, 0, len(artifacts))
	for _, na := range artifacts {
		path, err := fs.Write(job, na.name, na.artifact)
		if err != nil {
			return err
		}
		logger.Debug("wrote artifact", zap.String("path", path), zap.Stringer("artifact", na.artifact))
		paths = append(paths, path)
	}
	_, err := fmt.Fprintln(out, strings.Join(paths, "\n"))
	return err
}
