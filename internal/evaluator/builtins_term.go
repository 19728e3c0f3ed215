package evaluator

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// is_tty() reports whether program output goes to a terminal. Output
// captured by a session is never a terminal.
func builtinIsTTY(e *Evaluator, args ...Object) (Object, error) {
	if err := checkArgs("is_tty", args, 0); err != nil {
		return nil, err
	}
	return nativeBool(IsTerminal(e.Out)), nil
}
