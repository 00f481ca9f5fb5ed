package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/robby/sprintreport/internal/auth"
	"github.com/robby/sprintreport/internal/capture"
	"github.com/robby/sprintreport/internal/config"
	"github.com/robby/sprintreport/internal/gh"
	"github.com/robby/sprintreport/internal/snapshot"
	"github.com/robby/sprintreport/internal/trello"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(configFlag))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadOptionalConfig reads the config file when one exists. A missing
// default file yields an empty config; rendering needs no credentials.
func loadOptionalConfig() (*config.Config, error) {
	path := config.Path(configFlag)
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && path == config.DefaultPath {
		slog.Debug("No config file, using defaults", "path", path)
		return config.Parse(nil)
	}
	return nil, err
}

// newTaker builds the snapshot taker for the configured source.
func newTaker(ctx context.Context, cfg *config.Config) (*capture.Taker, error) {
	var source capture.Source
	switch cfg.Source {
	case config.SourceGitHub:
		client, err := gh.New()
		if err != nil {
			return nil, err
		}
		project, err := client.FindProject(ctx, cfg.GitHub.Owner, cfg.GitHub.Project)
		if err != nil {
			return nil, err
		}
		slog.Debug("GitHub project resolved", "id", project.ID, "title", project.Title)
		source = gh.NewBoard(client, project.ID, cfg.GitHub.Field)
	case config.SourceTrello:
		key, token, err := auth.TrelloCredentials(cfg.APIKey, cfg.UserToken)
		if err != nil {
			return nil, err
		}
		source = trello.New(key, token)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalid, cfg.Source)
	}

	return capture.NewTaker(source, cfg.ListIDs, capture.WithFilter(cfg.Filter())), nil
}

// takeSnapshot captures the board described by the config.
func takeSnapshot(ctx context.Context) (*snapshot.Document, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	taker, err := newTaker(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return taker.Take(ctx)
}

// loadSnapshots loads the start snapshot file and the end snapshot file, or
// captures the end snapshot live when only one file is given.
func loadSnapshots(ctx context.Context, args []string) (*snapshot.Snapshot, *snapshot.Snapshot, error) {
	start, err := snapshot.LoadFile(args[0])
	if err != nil {
		return nil, nil, err
	}

	if len(args) > 1 {
		end, err := snapshot.LoadFile(args[1])
		if err != nil {
			return nil, nil, err
		}
		return start, end, nil
	}

	slog.Debug("No end snapshot given, capturing the board now")
	doc, err := takeSnapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to capture end snapshot: %w", err)
	}
	end, err := doc.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
