package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ColorEnabled reports whether output written to w should carry ANSI colours.
//
// Colour is off when:
//   - w is not a terminal (redirected to a file, piped, captured in tests)
//   - NO_COLOR is set (https://no-color.org)
//   - TERM=dumb
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
