package formatter

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/gnolang/tpath/rewrite"
)

// WriteJSON writes the results as an indented JSON array.
func WriteJSON(w io.Writer, results []*rewrite.FileResult) error {
	if results == nil {
		results = []*rewrite.FileResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// SetColor enables colored output when w is a terminal and disable is
// false.
func SetColor(w io.Writer, disable bool) {
	color.NoColor = disable || !isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
