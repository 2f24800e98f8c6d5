package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/localstore"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/mutation"
	"github.com/five82/shelf/internal/persist"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/storeapi"
	"github.com/five82/shelf/internal/ui"
)

// Options configure the shelf application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelf/prefs.toml
	APIURL     string // overrides the configured API URL when set
}

// App holds the wired services of one session.
type App struct {
	Config    config.Config
	Local     *localstore.Store
	Store     *state.Store
	Client    *storeapi.Client
	Catalog   *CatalogLoader
	Mutations *mutation.Simulator
	Auth      *auth.Service

	detach func()
}

// New wires the services for cfg. The store starts from the persisted
// snapshot; a corrupt snapshot is logged and replaced by defaults.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	lg := zctx.From(ctx)

	local, err := localstore.Open(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "open local storage")
	}

	gateway := persist.NewGateway(local, persist.Whitelist{
		Cart:      true,
		Favorites: true,
		Products:  cfg.PersistProducts,
	})
	initial, err := gateway.Rehydrate(ctx)
	if err != nil {
		var corrupt *persist.CorruptSnapshotError
		if !errors.As(err, &corrupt) {
			return nil, errors.Wrap(err, "rehydrate")
		}
		lg.Warn("Discarding persisted state", zap.Error(err))
	}
	store := state.New(initial)

	client, err := storeapi.NewClient(cfg.APIURL)
	if err != nil {
		return nil, errors.Wrap(err, "init api client")
	}

	session, err := auth.LoadSession(local)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	mopts := []mutation.Option{
		mutation.WithDelay(cfg.MutationDelay),
		mutation.WithRemovalDelay(cfg.RemovalDelay),
		mutation.WithMeter(otel.Meter("github.com/five82/shelf")),
	}
	if cfg.SequencedMutations {
		mopts = append(mopts, mutation.WithSequencing())
	}

	a := &App{
		Config:    cfg,
		Local:     local,
		Store:     store,
		Client:    client,
		Catalog:   NewCatalogLoader(store, client),
		Mutations: mutation.New(store, mopts...),
		Auth:      auth.NewService(client, session),
	}
	a.detach = gateway.Attach(ctx, store)

	lg.Info("Session ready",
		zap.String("api", client.BaseURL()),
		zap.String("data_dir", local.Dir()),
		zap.Int("cart_lines", initial.Cart.Len()),
		zap.Int("favorites", initial.Favorites.Len()),
		zap.Bool("authenticated", session.Authenticated()),
	)
	return a, nil
}

// Close stops persisting store changes.
func (a *App) Close() {
	if a.detach != nil {
		a.detach()
	}
}

// Run boots the shelf TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}

	lg, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = lg.Sync() }()
	ctx = zctx.Base(ctx, lg)

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	a, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// The product view renders the loading state until this lands.
	a.Catalog.Start(ctx)

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     a.Store,
		Catalog:   a.Catalog,
		API:       a.Client,
		Mutations: a.Mutations,
		Auth:      a.Auth,
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
}
