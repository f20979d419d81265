// Terminal styling for the CLI, trimmed down from shabbyrobe's termfmt
// (https://github.com/shabbyrobe/golib, MIT licensed) to the handful of escapes we print.
package termfmt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Escape interface {
	Wrap(out string) string
}

func With(escs ...Escape) Style { return (Style{}).With(escs...) }
func Bold() Style                { return (Style{}).Bold() }
func Fg(c C16Name) Style         { return (Style{}).Fg(c) }
func Linked(link string) Style   { return (Style{}).Linked(link) }

// Style formats a value with %s, %d, %v etc. and wraps the result in its escapes.
type Style struct {
	escapes []Escape
	v       any
}

var _ fmt.Formatter = Style{}

func (c Style) With(escs ...Escape) Style {
	c.escapes = append(append([]Escape{}, c.escapes...), escs...)
	return c
}

func (c Style) Bold() Style              { return c.With(BoldEscape{}) }
func (c Style) Fg(n C16Name) Style       { return c.With(C16Color{Name: n}) }
func (c Style) Linked(link string) Style { return c.With(Link{link}) }

func (c Style) V(v any) Style {
	c.v = v
	return c
}

func (c Style) Format(f fmt.State, verb rune) {
	v := printable(fmt.Sprintf(buildValueFormat(f, verb), c.v))
	if enabled {
		for i := len(c.escapes) - 1; i >= 0; i-- {
			v = c.escapes[i].Wrap(v)
		}
	}
	f.Write([]byte(v))
}

var enabled = true

// SetEnabled turns escapes on or off globally, e.g. off when stderr isn't a terminal.
func SetEnabled(on bool) { enabled = on }

func buildValueFormat(f fmt.State, verb rune) string {
	s := "%"
	for _, flag := range []int{' ', '+', '-', '0', '#'} {
		if f.Flag(flag) {
			s += string(rune(flag))
		}
	}
	if width, ok := f.Width(); ok {
		s += strconv.Itoa(width)
	}
	if prec, ok := f.Precision(); ok {
		s += "." + strconv.Itoa(prec)
	}
	return s + string(verb)
}

// Link is an OSC 8 hyperlink; terminals that don't know it show the plain text.
type Link struct {
	URL string
}

func (l Link) Wrap(out string) string {
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", printable(l.URL), out)
}

type BoldEscape struct{}

func (b BoldEscape) Wrap(v string) string { return fmt.Sprintf("\x1b[1m%s\x1b[0m", v) }

type C16Name uint8

const (
	DefaultColor C16Name = iota

	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	LightGrey

	DarkGrey
	LightRed
	LightGreen
	LightYellow
	LightBlue
	LightMagenta
	LightCyan
	White
)

type C16Color struct {
	Name C16Name
}

func (c C16Color) Wrap(out string) string {
	cv := uint8(39)
	if c.Name != DefaultColor {
		// enum starts at one; the lower 8 run from 30 to 37, the upper 8 from 90 to 97.
		cv = uint8(c.Name) - 1
		if c.Name < DarkGrey {
			cv += 30
		} else {
			cv += 90 - 8
		}
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", cv, out)
}

func printable(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, v)
}
