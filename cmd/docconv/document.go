package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docconv/document"
	"docconv/fidelity"
	"docconv/patch"
	"docconv/state"
	"docconv/store"
)

// openService prepares document service backed by configured revision
// store. Caller must close the store.
func openService(ctx context.Context, env *state.LocalEnv) (*document.Service, *patch.Engine, *store.SQLite, error) {
	st, err := store.Open(ctx, &env.Cfg.Store, env.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	engine := patch.NewEngine(&env.Cfg.Patch, env.Log)
	return document.NewService(engine, st, env.Log), engine, st, nil
}

func closeStore(st *store.SQLite, log *zap.Logger) {
	if err := st.Close(); err != nil {
		log.Warn("Unable to close revision store", zap.Error(err))
	}
}

func readPatch(path string) (*patch.DocumentPatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read patch: %w", err)
	}
	p := &patch.DocumentPatch{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %w", patch.ErrInvalidPatch, err)
	}
	return p, nil
}

// writeOutput writes data to named file or STDOUT when name is empty.
func writeOutput(name string, data []byte) error {
	var out io.Writer = os.Stdout
	if len(name) > 0 {
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", name, err)
		}
		defer f.Close()
		out = f
	}
	_, err := out.Write(data)
	return err
}

func runPatch(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	docID := cmd.String("document")
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read document: %w", err)
	}
	p, err := readPatch(cmd.String("patch"))
	if err != nil {
		return err
	}

	svc, engine, st, err := openService(ctx, env)
	if err != nil {
		return err
	}
	defer closeStore(st, log)

	resp, err := svc.ApplyPatch(ctx, docID, string(content), p)
	if err != nil {
		return fmt.Errorf("unable to apply patch: %w", err)
	}
	log.Info("Patch processed", zap.String("document", docID),
		zap.Bool("revision_created", resp.RevisionCreated), zap.String("revision", resp.RevisionID))

	if cmd.Bool("diff") {
		d := engine.Diff(string(content), resp.Document)
		log.Info("Difference",
			zap.Bool("changed", d.HasChanges), zap.Strings("added", d.Added), zap.Strings("removed", d.Removed),
			zap.Strings("modified", d.Modified), zap.String("preview", d.Preview))
	}
	return writeOutput(cmd.Args().Get(1), []byte(resp.Document))
}

func runSave(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read document: %w", err)
	}

	svc, _, st, err := openService(ctx, env)
	if err != nil {
		return err
	}
	defer closeStore(st, log)

	id, err := svc.Save(ctx, cmd.String("document"), string(content))
	if err != nil {
		return err
	}
	log.Info("Revision created", zap.String("revision", id))
	return nil
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	st, err := store.Open(ctx, &env.Cfg.Store, env.Log)
	if err != nil {
		return err
	}
	defer closeStore(st, log)

	revs, err := st.Revisions(ctx, cmd.String("document"))
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		log.Info("No revisions found", zap.String("document", cmd.String("document")))
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tCREATED\tCHANGES\tDESCRIPTION")
	for _, r := range revs {
		changes, desc := 0, ""
		if r.Patch != nil {
			changes, desc = len(r.Patch.Changes), r.Patch.Description
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Kind, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), changes, desc)
	}
	return tw.Flush()
}

type scoreReport struct {
	Fidelity int                    `json:"fidelity"`
	Missing  []string               `json:"missing"`
	Quality  fidelity.QualityReport `json:"quality"`
}

func runScore(ctx context.Context, cmd *cli.Command) error {
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read document: %w", err)
	}

	rep := scoreReport{
		Fidelity: fidelity.Score(string(data)),
		Missing:  fidelity.Missing(string(data)),
		Quality:  fidelity.Analyze(string(data)),
	}
	if rep.Missing == nil {
		rep.Missing = []string{}
	}
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	state.EnvFromContext(ctx).Log.Debug("Document scored", zap.String("file", src), zap.Int("fidelity", rep.Fidelity))
	return writeOutput("", append(out, '\n'))
}
