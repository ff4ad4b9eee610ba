package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"docconv/config"
	"docconv/markup"
)

// maxPrimaryOutput limits size of html produced by external converter.
const maxPrimaryOutput = 512 << 20

// Invoker runs external converter for input file, placing results into
// workDir. It returns path to produced html.
type Invoker interface {
	Invoke(ctx context.Context, inputPath, workDir string, timeout time.Duration) (string, error)
}

// SOfficeInvoker runs headless office suite. Every invocation gets its own
// user profile inside working area, so parallel conversions do not fight
// over profile lock.
type SOfficeInvoker struct {
	Binary string
	Filter string
	log    *zap.Logger
}

func NewSOfficeInvoker(cfg *config.PrimaryConfig, log *zap.Logger) *SOfficeInvoker {
	return &SOfficeInvoker{Binary: cfg.Binary, Filter: cfg.Filter, log: log.Named("soffice")}
}

func (s *SOfficeInvoker) Invoke(ctx context.Context, inputPath, workDir string, timeout time.Duration) (string, error) {
	outDir := filepath.Join(workDir, "out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	profile := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(workDir, "profile"))}
	args := []string{
		"--headless", "--norestore", "--nologo", "--nodefault", "--nolockcheck",
		"-env:UserInstallation=" + profile.String(),
		"--convert-to", s.Filter,
		"--outdir", outDir,
		inputPath,
	}

	cmd := exec.CommandContext(tctx, s.Binary, args...)
	cmd.Dir = workDir
	cmd.WaitDelay = 2 * time.Second
	var output bytes.Buffer
	cmd.Stdout, cmd.Stderr = &output, &output

	s.log.Debug("Running external converter", zap.String("binary", s.Binary), zap.Strings("args", args))

	start := time.Now()
	err := cmd.Run()
	switch {
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(tctx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%w after %s", ErrConversionTimeout, timeout)
	case err != nil:
		return "", fmt.Errorf("external converter failed: %w (%s)", err, strings.TrimSpace(output.String()))
	}

	s.log.Debug("External converter finished", zap.Duration("elapsed", time.Since(start)), zap.ByteString("output", bytes.TrimSpace(output.Bytes())))

	return findOutput(outDir, inputPath)
}

// findOutput locates non empty html produced for input.
func findOutput(outDir, inputPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	candidates := []string{
		filepath.Join(outDir, base+".html"),
		filepath.Join(outDir, base+".xhtml"),
		filepath.Join(outDir, base+".htm"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
			return c, nil
		}
	}
	return "", errors.New("external converter produced no output")
}

// readPrimaryOutput loads produced html honoring its declared charset and
// replaces relative image references with inlined data. Output larger than
// limit bytes is rejected. Problems with individual images are reported as
// warnings.
func readPrimaryOutput(path string, limit int64, inline func([]byte, string) (string, error), log *zap.Logger) (string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("unable to open converter output: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("unable to read converter output: %w", err)
	}
	if int64(len(raw)) > limit {
		return "", nil, fmt.Errorf("converter output is larger than %d bytes", limit)
	}
	r, err := charset.NewReader(bytes.NewReader(raw), "text/html")
	if err != nil {
		return "", nil, fmt.Errorf("unable to detect converter output encoding: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("unable to decode converter output: %w", err)
	}
	out := string(decoded)
	if strings.TrimSpace(out) == "" {
		return "", nil, errors.New("external converter produced empty output")
	}

	tree, err := markup.Parse(out)
	if err != nil {
		return "", nil, fmt.Errorf("unable to parse converter output: %w", err)
	}

	var warnings []string
	changed := false
	dir := filepath.Dir(path)
	markup.Walk(tree.Root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Img {
			return true
		}
		src, ok := markup.Attr(n, "src")
		if !ok || !isRelativeRef(src) {
			return true
		}
		if inline == nil {
			return true
		}
		changed = true
		uri, err := inlineFile(dir, src, inline)
		if err != nil {
			log.Warn("Unable to inline image", zap.String("src", src), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("image %s dropped: %v", src, err))
			n.Parent.RemoveChild(n)
			return false
		}
		markup.SetAttr(n, "src", uri)
		return true
	})
	if !changed {
		return out, warnings, nil
	}
	if out, err = tree.Render(); err != nil {
		return "", nil, fmt.Errorf("unable to render converter output: %w", err)
	}
	return out, warnings, nil
}

func isRelativeRef(src string) bool {
	if src == "" || strings.HasPrefix(src, "#") {
		return false
	}
	u, err := url.Parse(src)
	return err == nil && u.Scheme == "" && u.Host == "" && !strings.HasPrefix(u.Path, "/")
}

// inlineFile reads image referenced relative to dir, refusing to leave it.
func inlineFile(dir, src string, inline func([]byte, string) (string, error)) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	name := filepath.Join(dir, filepath.FromSlash(u.Path))
	if rel, err := filepath.Rel(dir, name); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("image is outside of working area")
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return inline(data, "")
}
