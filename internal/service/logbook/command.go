package logbook

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/logger"
	"github.com/oshokin/eresus/internal/repository/archive"
)

// Options controls the logbook commands.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

// RunList prints every archived log.
func RunList(ctx context.Context, opts *Options) error {
	return withService(ctx, opts, func(ctx context.Context, svc *Service) error {
		logs, err := svc.List(ctx)
		if err != nil {
			return err
		}

		return RenderTable(opts.out(), logs)
	})
}

// RunShow prints the event summary of one log.
func RunShow(ctx context.Context, opts *Options, id string) error {
	return withService(ctx, opts, func(ctx context.Context, svc *Service) error {
		summary, err := svc.Summary(ctx, id)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(opts.out(), summary)

		return err
	})
}

// RunDelete removes one log.
func RunDelete(ctx context.Context, opts *Options, id string) error {
	return withService(ctx, opts, func(ctx context.Context, svc *Service) error {
		deleted, err := svc.Delete(ctx, id)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(opts.out(), "Deleted arrest log %s\n", deleted)

		return err
	})
}

func withService(ctx context.Context, opts *Options, fn func(context.Context, *Service) error) error {
	ctx = logger.WithName(ctx, "logbook")

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	repo, err := archive.Open(ctx, settings.Archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close archive", "error", closeErr)
		}
	}()

	logger.DebugKV(ctx, "Archive opened", "driver", settings.Archive.Driver, "path", settings.Archive.Path)

	return fn(ctx, NewService(repo))
}

func (o *Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}

	return o.Out
}
