package spanlog

import (
	"runtime"
	"strings"

	"github.com/max-chem-eng/spanlog/models"
)

// callerSkip is the runtime.Caller depth of user code as seen from
// callerLocation: callerLocation, the internal emitter, the public API.
const callerSkip = 3

// callerLocation resolves the source location skip frames above it. The
// target is the package path of the calling function.
func callerLocation(skip int) models.Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return models.Location{Target: "unknown"}
	}
	target := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		target = packagePath(fn.Name())
	}
	return models.Location{Target: target, File: file, Line: line}
}

// packagePath trims a fully qualified function name such as
// "github.com/a/b.(*T).Method" down to its package path "github.com/a/b".
func packagePath(funcName string) string {
	lastSlash := strings.LastIndexByte(funcName, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	if dot := strings.IndexByte(funcName[lastSlash:], '.'); dot >= 0 {
		return funcName[:lastSlash+dot]
	}
	return funcName
}
