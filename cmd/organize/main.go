package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kirillkom/ready-to-send/internal/bootstrap"
	"github.com/kirillkom/ready-to-send/internal/config"
	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
	"github.com/kirillkom/ready-to-send/internal/core/usecase"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/storage/memory"
	"github.com/kirillkom/ready-to-send/internal/observability/logging"
)

func main() {
	out := flag.String("out", "ReadyToSend.zip", "path of the archive to write")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: organize [-out file.zip] <file-or-dir>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, "organize", cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), *out); err != nil {
		fmt.Fprintln(os.Stderr, userFacing(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out string) error {
	paths, err := collectPaths(args)
	if err != nil {
		return err
	}

	organizer, err := bootstrap.NewOrganizer(cfg, nil, nil)
	if err != nil {
		return err
	}

	opts := organizer.Options()
	if err := checkLimits(paths, opts); err != nil {
		return err
	}

	session, err := memory.NewStager().NewSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := stageFiles(ctx, session, paths, opts.MaxFileBytes); err != nil {
		return err
	}

	result, err := organizer.Organize(ctx, session)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, result.Archive, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	slog.Info("organize_written", "path", out, "files", result.Files, "bytes", len(result.Archive), "fallback_entries", result.FallbackEntries)
	return nil
}

// collectPaths expands directories into the regular files beneath them,
// skipping dot-files. Explicit file arguments are kept in order.
func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != arg && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

// checkLimits applies the batch caps from file metadata so nothing is read
// into memory for a batch that would be rejected.
func checkLimits(paths []string, opts usecase.OrganizeOptions) error {
	if len(paths) > opts.MaxFiles {
		return usecase.TooManyFilesError(len(paths), opts.MaxFiles)
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > opts.MaxFileBytes {
			return usecase.FileTooLargeError(filepath.Base(path), opts.MaxFileBytes)
		}
	}
	return nil
}

// stageFiles copies at most maxBytes+1 bytes per file, so a file that grew
// after checkLimits still fails validation instead of filling memory.
func stageFiles(ctx context.Context, session ports.StagingSession, paths []string, maxBytes int64) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		_, err = session.Add(ctx, filepath.Base(path), io.LimitReader(f, maxBytes+1))
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("stage %s: %w", path, err)
		}
	}
	return nil
}

func userFacing(err error) string {
	if msg, ok := domain.UserMessage(err); ok {
		return msg
	}
	return err.Error()
}
