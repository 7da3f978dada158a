// Package util provides small helpers shared by the command line front end.
package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petflix/petflix/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

// Quantify renders count with the singular or plural noun.
func Quantify(count int, singular, plural string) string {
	noun := plural
	if count == 1 {
		noun = singular
	}
	return fmt.Sprintf("%d %s", count, noun)
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func stdout() int { return int(os.Stdout.Fd()) }

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(stdout())
}

// TerminalWidth is the terminal width, or fallback when stdout is not a terminal.
func TerminalWidth(fallback int) int {
	if width, _, err := term.GetSize(stdout()); err == nil && width > 0 {
		return width
	}
	return fallback
}

// Ellipsize cuts s to at most n runes, marking the cut with an ellipsis.
// A non-positive n leaves s untouched.
func Ellipsize(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// PrintErasable writes msg on the current line and returns a func that blanks it again.
// Without a terminal nothing is written.
func PrintErasable(msg string) (erase func()) {
	if !IsTerminal() {
		return func() {}
	}

	fmt.Fprint(os.Stdout, "\r"+msg)
	return func() {
		blank := strings.Repeat(" ", utf8.RuneCountInString(msg))
		fmt.Fprint(os.Stdout, "\r"+blank+"\r")
	}
}

func pick[T constraints.Ordered](items []T, better func(a, b T) bool) (best T) {
	for i, item := range items {
		if i == 0 || better(item, best) {
			best = item
		}
	}
	return
}

// Max returns the largest argument, or the zero value when there are none.
func Max[T constraints.Ordered](items ...T) T {
	return pick(items, func(a, b T) bool { return a > b })
}

// Min returns the smallest argument, or the zero value when there are none.
func Min[T constraints.Ordered](items ...T) T {
	return pick(items, func(a, b T) bool { return a < b })
}

// Delete removes path and everything below it. Missing paths are not an error.
func Delete(path string) error {
	afs := filesystem.API()
	if _, err := afs.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return afs.RemoveAll(path)
}
