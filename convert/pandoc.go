package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const binPandoc = "pandoc"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Pandoc pipes HTML through the pandoc binary and reads GitHub flavoured Markdown back.
type Pandoc struct {
	bin  string
	exec executor
}

func NewPandoc() *Pandoc {
	return &Pandoc{bin: binPandoc, exec: &osExecutor{}}
}

func (p *Pandoc) Name() string { return string(KindPandoc) }

// Args are the pandoc arguments; --wrap=none keeps each paragraph on one line.
func (p *Pandoc) Args() []string {
	return []string{"-f", "html", "-t", "gfm", "--wrap=none"}
}

func (p *Pandoc) Convert(ctx context.Context, html string) (string, error) {
	path, err := p.exec.LookPath(p.bin)
	if err != nil {
		return "", fmt.Errorf("convert: %w: %s not found on PATH: %v", ErrConversionUnavailable, p.bin, err)
	}

	var stdout, stderr bytes.Buffer
	if err := p.exec.RunPiped(ctx, path, p.Args(), strings.NewReader(html), &stdout, &stderr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("convert: %w: %s: %v: %s", ErrConversionFailed, p.bin, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
