// Package telemetry writes structured JSON log lines, one per event.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Output is the destination for log lines; tests may swap it.
var Output io.Writer = os.Stdout

var (
	outputMu sync.Mutex
	minLevel atomic.Int32
)

const (
	levelDebug int32 = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[int32]string{
	levelDebug: "debug",
	levelInfo:  "info",
	levelWarn:  "warn",
	levelError: "error",
}

func init() {
	minLevel.Store(levelInfo)
}

// SetLevel drops lines below name (debug, info, warn or error). Unknown
// names reset to info.
func SetLevel(name string) {
	for lvl, n := range levelNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			minLevel.Store(lvl)
			return
		}
	}
	minLevel.Store(levelInfo)
}

func Debug(msg string, fields map[string]any) { write(levelDebug, msg, fields) }
func Info(msg string, fields map[string]any)  { write(levelInfo, msg, fields) }
func Warn(msg string, fields map[string]any)  { write(levelWarn, msg, fields) }
func Error(msg string, fields map[string]any) { write(levelError, msg, fields) }

func write(level int32, msg string, fields map[string]any) {
	if level < minLevel.Load() {
		return
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"], entry["level"], entry["msg"] = ts, levelNames[level], msg

	line, err := json.Marshal(entry)
	if err != nil {
		line = fmt.Appendf(nil, `{"ts":%q,"level":"error","msg":"log encode failed","event":%q,"err":%q}`, ts, msg, err.Error())
	}
	outputMu.Lock()
	defer outputMu.Unlock()
	Output.Write(append(line, '\n'))
}
