package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// barProgress draws attachment downloads as an mpb bar.
type barProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newBarProgress(out io.Writer) *barProgress {
	return &barProgress{p: mpb.New(mpb.WithWidth(64), mpb.WithOutput(out))}
}

func (b *barProgress) Begin(total int) {
	if total == 0 {
		return
	}
	b.bar = b.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("attachments:", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
		),
	)
}

func (b *barProgress) Downloaded(string, error) {
	if b.bar != nil {
		b.bar.Increment()
	}
}

// Wait flushes the bar; an export that bailed halfway leaves it incomplete, so drop it.
func (b *barProgress) Wait() {
	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.p.Wait()
}

// logProgress is the non-interactive fallback: a debug line per attachment.
type logProgress struct{}

func (logProgress) Begin(total int) { debugLog("Found %d attachments to download\n", total) }

func (logProgress) Downloaded(url string, err error) {
	if err != nil {
		debugLog("  failed %s: %v\n", url, err)
		return
	}
	debugLog("  got %s\n", url)
}
