package handlers

import (
	"net/http"
	"runtime"
	"sort"
	"sync"

	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/namelens/fredlens/internal/appid"
)

type buildInfo struct {
	version, commit, date string
}

var (
	buildMu sync.RWMutex
	build   = buildInfo{version: "dev", commit: "unknown", date: "unknown"}
)

// SetVersionInfo records the ldflags-injected build metadata.
func SetVersionInfo(version, commit, buildDate string) {
	buildMu.Lock()
	defer buildMu.Unlock()
	build = buildInfo{version: version, commit: commit, date: buildDate}
}

type VersionResponse struct {
	App          AppInfo        `json:"app"`
	Dependencies DepInfo        `json:"dependencies"`
	Runtime      RuntimeInfo    `json:"runtime"`
	Dispatch     []DispatchInfo `json:"dispatch,omitempty"`
}

type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

type RuntimeInfo struct {
	Platform string `json:"platform"`
	NumCPU   int    `json:"num_cpu"`
}

// DispatchInfo names the limiter strategy serving one upstream scope.
type DispatchInfo struct {
	Scope                string `json:"scope"`
	Mode                 string `json:"mode"`
	MaxRequestsPerWindow int    `json:"max_requests_per_window"`
}

// NewVersionHandler reports build metadata plus the dispatch mode of every
// limiter the gateway was started with.
func NewVersionHandler(limiters map[string]StateReporter) http.HandlerFunc {
	scopes := make([]string, 0, len(limiters))
	for scope := range limiters {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	return func(w http.ResponseWriter, r *http.Request) {
		buildMu.RLock()
		b := build
		buildMu.RUnlock()

		deps := crucible.GetVersion()
		resp := VersionResponse{
			App: AppInfo{
				Name:      appid.Get().BinaryName,
				Version:   b.version,
				Commit:    b.commit,
				BuildDate: b.date,
				GoVersion: runtime.Version(),
			},
			Dependencies: DepInfo{Gofulmen: deps.Gofulmen, Crucible: deps.Crucible},
			Runtime:      RuntimeInfo{Platform: runtime.GOOS + "/" + runtime.GOARCH, NumCPU: runtime.NumCPU()},
		}
		for _, scope := range scopes {
			st := limiters[scope].State()
			resp.Dispatch = append(resp.Dispatch, DispatchInfo{
				Scope:                scope,
				Mode:                 st.Mode,
				MaxRequestsPerWindow: st.MaxRequests,
			})
		}
		writeJSON(w, resp)
	}
}

// VersionHandler serves build metadata without dispatch details.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	NewVersionHandler(nil)(w, r)
}
