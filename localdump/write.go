// Package localdump puts an exported page on disk: one Markdown file named after the page
// title, with its attachments alongside in attachments/.
package localdump

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/toothbrush/confluence2md/attachments"
)

type Writer struct {
	// FrontMatter prepends a YAML header with page metadata.
	FrontMatter bool

	// Now is overridable for tests.
	Now func() time.Time
}

// Write stores doc under outDir, creating it as needed and overwriting files of the same name.
func (w *Writer) Write(doc Document, outDir string) (Written, error) {
	if doc.Page == nil {
		return Written{}, fmt.Errorf("localdump: no page to write")
	}

	// Does the output dir exist, or can we make it?
	if stat, err := os.Stat(outDir); err == nil && !stat.IsDir() {
		return Written{}, fmt.Errorf("localdump: output path not a directory: '%s'", outDir)
	}

	attachmentsDir := filepath.Join(outDir, attachments.Dir)
	// there's probably a nicer way to express 0750 but meh
	if err := os.MkdirAll(attachmentsDir, 0750); err != nil {
		return Written{}, fmt.Errorf("localdump: couldn't create directory %s: %w", attachmentsDir, err)
	}

	for _, ref := range doc.Attachments {
		dest := filepath.Join(attachmentsDir, ref.LocalFilename)
		if err := writeFileAtomic(dest, ref.Bytes); err != nil {
			return Written{}, err
		}
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	contents, err := render(doc, w.FrontMatter, now())
	if err != nil {
		return Written{}, err
	}

	mdPath := filepath.Join(outDir, MarkdownFilename(doc.Page.Title, doc.Page.ID))
	if err := writeFileAtomic(mdPath, []byte(contents)); err != nil {
		return Written{}, err
	}

	written := Written{MarkdownPath: mdPath}
	if len(doc.Attachments) > 0 {
		written.AttachmentsDir = attachmentsDir
	}
	return written, nil
}

// maxStemBytes leaves room for ".md" and the temporary name used while writing within the
// usual 255 byte filename limit.
const maxStemBytes = 200

// MarkdownFilename is "<title>.md" with anything but letters, digits, space, '-', '_' and '.'
// replaced by '_'.  Long titles are cut to maxStemBytes.
func MarkdownFilename(title, pageID string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	// leading dots would hide the file, or worse, make it ".."
	name := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	name = strings.TrimRight(truncate(name, maxStemBytes), " ")
	if strings.Trim(name, "_ ") == "" {
		name = "page-" + pageID
	}
	return name + ".md"
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// writeFileAtomic writes to a temporary file next to dest and renames it into place, so a
// reader never sees half a file.
func writeFileAtomic(dest string, contents []byte) error {
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("localdump: couldn't create file next to %s: %w", dest, err)
	}
	tmp := f.Name()

	if _, err := f.Write(contents); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("localdump: couldn't write to file %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("localdump: couldn't close file %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("localdump: couldn't chmod file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("localdump: couldn't move %s into place: %w", dest, err)
	}

	return nil
}
