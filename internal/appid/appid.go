// Package appid holds the application identity used for help text, config
// paths, environment prefixes and telemetry namespaces.
package appid

import "strings"

// Identity describes the binary.
type Identity struct {
	BinaryName  string
	ConfigName  string
	EnvPrefix   string
	Vendor      string
	Description string
}

var identity = Identity{
	BinaryName:  "fredlens",
	ConfigName:  "fredlens",
	EnvPrefix:   "FREDLENS_",
	Vendor:      "namelens",
	Description: "Rate-limited client and gateway for the FRED economic data API",
}

// Get returns the application identity.
func Get() *Identity {
	id := identity
	return &id
}

// EnvName returns the environment variable name for a config suffix.
func (i *Identity) EnvName(suffix string) string {
	prefix := i.EnvPrefix
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix + strings.ToUpper(suffix)
}

// TelemetryNamespace returns the metric namespace, e.g. "namelens_fredlens".
func (i *Identity) TelemetryNamespace() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{i.Vendor, i.BinaryName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, strings.ReplaceAll(p, "-", "_"))
		}
	}
	return strings.Join(parts, "_")
}
