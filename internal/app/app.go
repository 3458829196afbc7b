package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"tracktray/internal/clock"
	"tracktray/internal/config"
	"tracktray/internal/console"
	"tracktray/internal/cred"
	"tracktray/internal/harvest"
	"tracktray/internal/history"
	"tracktray/internal/prefs"
	"tracktray/internal/session"
)

// keyringService is the service name credentials are filed under.
const keyringService = "tracktray"

// Options configure the application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/tracktray/prefs.toml
	HistoryPath string // empty uses default ~/.local/share/tracktray/history.db
	PollEvery   int    // seconds; zero uses default
	Demo        bool   // run against the in-memory gateway
}

// Run boots the tracker until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	gateway, err := buildGateway(ctx, cfg, opts.Demo)
	if err != nil {
		return err
	}

	recorder := openHistory(opts.HistoryPath)
	if recorder != nil {
		defer func() { _ = recorder.Close() }()
	}

	presenter := console.New(userPrefs)

	sess := session.New(gateway, clock.System{}, presenter, recorderOrNil(recorder), session.Config{
		Interval:     cfg.Interval,
		StopInterval: cfg.StopInterval,
	})
	presenter.Bind(sess)

	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	StartPoller(ctx, sess, interval)

	<-ctx.Done()

	// Matching the original applet: quitting while tracking turns the remote
	// timer flag off so no other client inherits a phantom timer.
	sess.Logout(true)
	return nil
}

func buildGateway(ctx context.Context, cfg config.Config, demo bool) (harvest.Gateway, error) {
	if demo {
		gw := harvest.NewMemoryGateway(harvest.DemoProjects())
		seedDemo(gw)
		return gw, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	password, err := lookupPassword(cred.Keyring{}, cfg)
	if err != nil {
		return nil, err
	}

	client, err := harvest.NewClient(cfg.URI, cfg.Username, password)
	if err != nil {
		return nil, fmt.Errorf("init gateway client: %w", err)
	}

	statusCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.CheckStatus(statusCtx); err != nil {
		if errors.Is(err, harvest.ErrServiceDown) {
			return nil, fmt.Errorf("cannot connect: %w", err)
		}
		return nil, fmt.Errorf("status probe failed: %w", err)
	}

	return client, nil
}

// lookupPassword resolves the account password: keyring first, then the
// TRACKTRAY_PASSWORD environment variable. A password found only in the
// environment is written back to the keyring when save_password is on.
func lookupPassword(store cred.Store, cfg config.Config) (string, error) {
	password, err := store.Get(keyringService, cfg.Username)
	if err == nil {
		return password, nil
	}
	if !errors.Is(err, cred.ErrNotFound) {
		return "", fmt.Errorf("read credentials: %w", err)
	}

	if fromEnv := os.Getenv("TRACKTRAY_PASSWORD"); fromEnv != "" {
		if cfg.SavePassword {
			if err := store.Set(keyringService, cfg.Username, fromEnv); err != nil {
				log.Printf("save password to keyring: %v", err)
			}
		}
		return fromEnv, nil
	}

	return "", fmt.Errorf("no password for %s: set TRACKTRAY_PASSWORD or store one in the keyring", cfg.Username)
}

func openHistory(path string) *history.Store {
	if path == "" {
		defaultPath, err := history.DefaultPath()
		if err != nil {
			log.Printf("history disabled: %v", err)
			return nil
		}
		path = defaultPath
	}
	store, err := history.Open(path)
	if err != nil {
		log.Printf("history disabled: %v", err)
		return nil
	}
	return store
}

// recorderOrNil keeps a typed-nil *history.Store out of the session's
// interface field.
func recorderOrNil(store *history.Store) session.Recorder {
	if store == nil {
		return nil
	}
	return store
}

// seedDemo installs an entry that looks recently touched, so demo mode boots
// straight into the running state.
func seedDemo(gw *harvest.MemoryGateway) {
	now := time.Now()
	gw.Seed(harvest.TimeEntry{
		ProjectID:   101,
		TaskID:      1,
		Hours:       0.75,
		Notes:       now.Add(-45*time.Minute).Format("15:04") + ": wired the importer",
		ProjectName: "TPS Migration",
		TaskName:    "Development",
		CreatedAt:   now.Add(-3 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Minute),
	})
}
