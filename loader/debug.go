//go:build debug

package loader

import (
	"fmt"
	"log"
	"os"
)

var debugLogger = log.New(os.Stderr, "[imgpool] ", log.Ltime|log.Lmicroseconds)

func debugLog(format string, args ...any) {
	debugLogger.Output(2, fmt.Sprintf(format, args...))
}

// debugResult traces every event a worker emits, one line per event.
func debugResult(res LoadResult) {
	debugLogger.Print(res.traceLine())
}
