/*------------------------------------------------------------------------------
* trace.go : leveled diagnostic logging for the tau-p engine
*
* A Trace/Tracet pair (level gate plus printf-style call sites) in a package
* the engine and CLI share, instead of a set of package-level globals in
* one file.
*-----------------------------------------------------------------------------*/
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu        sync.Mutex
	fpTrace   *os.File
	level     int
	openedAt  time.Time
	file_name string
)

// Open directs trace output to the file at path, or to taup.log inside path
// when path is an existing directory. An empty path keeps the default
// (stdout) sink. Open replaces any previously opened sink.
func Open(path string) error {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	if path == "" {
		fpTrace = os.Stdout
		openedAt = time.Now()
		return nil
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, "taup.log")
	}
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fpTrace = os.Stderr
		return err
	}
	fpTrace = fp
	file_name = path
	openedAt = time.Now()
	return nil
}

// Close releases the current trace sink, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if fpTrace != nil && fpTrace != os.Stderr && fpTrace != os.Stdout {
		fpTrace.Close()
	}
	fpTrace = nil
	file_name = ""
}

// SetLevel sets the trace level gate; calls with level > gate are dropped.
func SetLevel(l int) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// Trace writes a diagnostic line gated by level. Level <= 1 additionally
// echoes to stdout as an operator-visible error message.
func Trace(lvl int, format string, v ...interface{}) {
	if lvl <= 1 {
		fmt.Printf(format, v...)
	}
	mu.Lock()
	defer mu.Unlock()
	if fpTrace == nil || lvl > level {
		return
	}
	fmt.Fprintf(fpTrace, "%d ", lvl)
	fmt.Fprintf(fpTrace, format, v...)
}

// Tracet writes a diagnostic line prefixed with elapsed time since Open.
func Tracet(lvl int, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if fpTrace == nil || lvl > level {
		return
	}
	elapsed := time.Since(openedAt).Seconds()
	fmt.Fprintf(fpTrace, "%d %9.3f: ", lvl, elapsed)
	fmt.Fprintf(fpTrace, format, v...)
}
