// logwriter replaces loggo's default writer with a compact console
// format for the alarm binaries.
package logwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/loggo"
)

type writer struct{}

func Setup() error {
	_, err := loggo.RemoveWriter("default")
	if err != nil {
		return err
	}

	return loggo.RegisterWriter("default", &writer{})
}

func (w *writer) Write(e loggo.Entry) {
	fmt.Fprintf(os.Stderr, "%v%v\n",
		e.Timestamp.Format("[2006-01-02 15:04:05] "),
		formatEntry(e),
	)
}

func formatEntry(e loggo.Entry) string {
	// who can remember the order of the levels right?
	// indicate the level like T1 for TRACE D2 for debug, etc
	return fmt.Sprintf(
		"[%v%v|%v:%v:%v] %v",
		string(e.Level.String()[0]),
		int(e.Level),
		e.Module,
		filepath.Base(e.Filename),
		e.Line,
		e.Message,
	)
}
