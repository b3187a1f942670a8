// Command protodump prints protobuf binaries as a field tree without a
// schema.
//
//	protodump [-config file.toml] [-grpc-frames] [-max-depth N] [-json] [file...]
//
// With no files, or a file named "-", it reads standard input.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/anirudhraja/protokit/internal/dump"
	"github.com/anirudhraja/protokit/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "protodump: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("protodump", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file")
	maxDepth := fs.Int("max-depth", 0, "levels of payloads to try as embedded messages")
	asJSON := fs.Bool("json", false, "print JSON instead of text")
	grpcFrames := fs.Bool("grpc-frames", false, "input is a sequence of gRPC length-prefixed frames")
	parallel := fs.Int("parallel", 0, "files parsed at once")
	logLevel := fs.String("log-level", "", "trace|debug|info|warn|error|off")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultDumpConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadDumpConfig(*configPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "json":
			cfg.JSON = *asJSON
		case "grpc-frames":
			cfg.GRPCFrames = *grpcFrames
		case "parallel":
			cfg.Parallel = *parallel
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}

	logger := logging.InitLogger("protodump", cfg.LogLevel)

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	outputs := make([]bytes.Buffer, len(inputs))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.Parallel)
	for i, name := range inputs {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInput(name, stdin)
			if err != nil {
				return err
			}
			logger.Debug().Str("input", name).Int("bytes", len(data)).Msg("parsing")
			if err := render(&outputs[i], data, cfg, logger.With().Str("input", name).Logger()); err != nil {
				logger.Error().Err(err).Str("input", name).Msg("parse failed")
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range outputs {
		if len(inputs) > 1 {
			fmt.Fprintf(stdout, "== %s ==\n", inputs[i])
		}
		if _, err := outputs[i].WriteTo(stdout); err != nil {
			return err
		}
	}
	return nil
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func render(w *bytes.Buffer, data []byte, cfg dumpConfig, logger zerolog.Logger) error {
	opts := dump.Options{MaxDepth: cfg.MaxDepth, JSON: cfg.JSON}
	if !cfg.GRPCFrames {
		return dump.Write(w, data, opts)
	}

	frames, err := dump.SplitFrames(data)
	if err != nil {
		return err
	}
	for i, frame := range frames {
		switch {
		case frame.Flags&dump.FlagTrailer != 0:
			logger.Debug().Int("frame", i).Str("trailer", string(frame.Data)).Msg("skipping trailer frame")
			continue
		case frame.Flags&dump.FlagCompressed != 0:
			return fmt.Errorf("frame %d is compressed", i)
		}
		if !cfg.JSON {
			fmt.Fprintf(w, "# frame %d\n", i)
		}
		if err := dump.Write(w, frame.Data, opts); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}
