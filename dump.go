package pantrypilot

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes v to stderr prefixed with the caller's file and line.
func Dump(v ...any) {
	_, file, line, _ := runtime.Caller(1)
	Fdump(os.Stderr, append([]any{fmt.Sprintf("%s:%d:", file, line)}, v...)...)
}

func Fdump(w io.Writer, v ...any) {
	dumper.Fdump(w, v...)
}
