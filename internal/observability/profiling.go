package observability

import (
	"net/http"
	"net/http/pprof"
)

const profilePrefix = "/debug/pprof/"

// Named runtime profiles worth looking at while a capture is running. Block
// and mutex profiles show contention between the audio thread and flushes.
var namedProfiles = []string{"goroutine", "heap", "allocs", "block", "mutex", "threadcreate"}

// mountProfiling exposes the pprof index, CPU profile, execution trace and
// the named profiles under /debug/pprof/.
func mountProfiling(mux *http.ServeMux) {
	mux.HandleFunc(profilePrefix, pprof.Index)
	for route, h := range map[string]http.HandlerFunc{
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		mux.HandleFunc(profilePrefix+route, h)
	}
	for _, name := range namedProfiles {
		mux.Handle(profilePrefix+name, pprof.Handler(name))
	}
}
