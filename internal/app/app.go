// Package app wires the selah application together: configuration, local
// stores, API clients, the playback sequencer, and the terminal UI.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/selahproject/selah/internal/annot"
	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/ask"
	"github.com/selahproject/selah/internal/config"
	"github.com/selahproject/selah/internal/favorites"
	"github.com/selahproject/selah/internal/reader"
	"github.com/selahproject/selah/internal/session"
	"github.com/selahproject/selah/internal/speech"
	"github.com/selahproject/selah/internal/ui"
)

// Options configure the selah application.
type Options struct {
	ConfigPath string // empty uses ~/.config/selah/config.toml
	StateDir   string // empty uses XDG state dir
}

// Run boots the selah TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stateDir := opts.StateDir
	if stateDir == "" {
		stateDir = config.StateDir()
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	sess := session.Open(stateDir)

	client, err := api.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	client.SetTokenSource(sess.Token)
	sess.SetAuthenticator(client)

	store := annot.Open(annot.NewFilePersister(filepath.Join(stateDir, "annotations.json")))
	fav := favorites.Open(stateDir)

	engine := speech.NewExecEngine(cfg.SpeechCommand, cfg.Language)
	seq := speech.NewSequencer(engine, store, cfg.Language)
	defer seq.Close()

	readerCtl := reader.New(client, store, seq)
	askCtl := ask.New(client)

	warmStart(ctx, sess, readerCtl)

	uiOpts := ui.Options{
		Context:    ctx,
		Client:     client,
		Session:    sess,
		Store:      store,
		Favorites:  fav,
		Reader:     readerCtl,
		Ask:        askCtl,
		Sequencer:  seq,
		ThemeName:  cfg.Theme,
		ConfigPath: opts.ConfigPath,
		Config:     cfg,
	}
	return ui.Run(uiOpts)
}

// warmStart fills caches the first screens need. Failures are tolerated: the
// UI retries on demand and renders whatever is available.
func warmStart(ctx context.Context, sess *session.Session, readerCtl *reader.Controller) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if sess.Authenticated() {
			if err := sess.EnsureFresh(gctx); err != nil {
				log.Printf("token refresh failed: %v", err)
			}
		}
		return nil
	})
	g.Go(func() error {
		if err := readerCtl.LoadBooks(gctx); err != nil {
			log.Printf("book preload failed: %v", err)
		}
		return nil
	})
	_ = g.Wait()
}
