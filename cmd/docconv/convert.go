package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docconv/api"
	"docconv/convert"
	"docconv/state"
)

func runConvert(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite, env.JSONOutput = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("json")

	conv := convert.NewConverter(env.Cfg, env.Log, convert.WithReport(env.Rpt))

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, conv, src, dst, log)
}

// process handles file or directory independently of CLI framework.
func process(ctx context.Context, conv *convert.Converter, src, dst string, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if fi.IsDir() {
		if err := processDir(ctx, conv, src, dst, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		return nil
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	if _, err := convert.ParseFormat(filepath.Ext(src)); err != nil {
		return fmt.Errorf("input was not recognized as document (%s): %w", src, err)
	}
	return processFile(ctx, conv, src, filepath.Base(src), dst, log)
}

// processDir walks directory tree finding supported documents and processes
// them. Failure of a single document does not stop processing.
func processDir(ctx context.Context, conv *convert.Converter, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, err := convert.ParseFormat(filepath.Ext(path)); err != nil {
			log.Debug("Skipping file, not recognized as document", zap.String("file", path))
			return nil
		}

		count++

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processFile(ctx, conv, path, rel, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processFile converts single document. "src" is part of the source path
// (always including file name) relative to the original path. "dst" is the
// destination directory.
func processFile(ctx context.Context, conv *convert.Converter, path, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string
	log = log.With(zap.String("from", src))

	log.Info("Conversion starting")
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res, err := conv.Convert(state.ContextWithLogger(ctx, log), data, src, filepath.Ext(path))
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Debug("Conversion warning", zap.Stringer("severity", w.Severity), zap.String("message", w.Message))
	}

	outExt := ".html"
	if env.JSONOutput {
		outExt = ".json"
	}
	outputName = buildOutputPath(res, src, dst, outExt, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	out := []byte(res.HTML)
	if env.JSONOutput {
		if out, err = json.MarshalIndent(api.NewConvertResponse(res), "", "  "); err != nil {
			return fmt.Errorf("unable to encode result: %w", err)
		}
	}
	if err := os.WriteFile(outputName, out, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	if env.Rpt != nil {
		name := filepath.Base(outputName)
		if rel, err := filepath.Rel(dst, outputName); err == nil {
			name = filepath.ToSlash(rel)
		}
		env.Rpt.Store("output/"+name, outputName)
	}
	return nil
}
