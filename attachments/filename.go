package attachments

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const fallbackFilename = "attachment"

// maxNameBytes leaves room for a -N suffix and the temporary name used while writing.
const maxNameBytes = 200

// Filename derives a filesystem-safe local name from the last path segment of u.  Query and
// fragment never contribute.
func Filename(u *url.URL) string {
	segment := path.Base(u.EscapedPath())
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	return Sanitize(segment)
}

// Sanitize keeps letters, digits, '-', '_' and '.', replacing everything else with '_'.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	clean := strings.Trim(b.String(), ".")
	if clean == "" || strings.Trim(clean, "_") == "" {
		return fallbackFilename
	}
	return shorten(clean)
}

// shorten cuts the stem of name so the whole is at most maxNameBytes, keeping the extension.
func shorten(name string) string {
	if len(name) <= maxNameBytes {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	n := maxNameBytes - len(ext)
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n] + ext
}

// nameRegistry hands out unique local filenames.  Comparison is case-insensitive so that two
// attachments can't clobber each other on macOS or Windows.
type nameRegistry struct {
	taken map[string]bool
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{taken: make(map[string]bool)}
}

// claim returns name, or name with a -N suffix before the extension if it's already taken.
func (n *nameRegistry) claim(name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; n.taken[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	n.taken[strings.ToLower(candidate)] = true

	return candidate
}
