// Package compat decides which report schema a Kubewarden controller and UI
// plugin version pair speak.
package compat

import (
	"fmt"

	"github.com/blang/semver/v4"

	"kwreport/pkg/policyreport"
)

// Compatibility tells which report schema is in effect. Both flags false
// means the pair is unknown and report data must be treated as absent.
type Compatibility struct {
	OldSchema bool
	NewSchema bool
}

// The bands below are a fixed lookup table. A newer controller mapping to
// the old schema is intended.
var (
	newSchemaController = semver.MustParseRange(">=1.10.0 <1.11.0")
	newSchemaPlugin     = semver.MustParseRange(">=1.4.0")
	oldSchemaController = semver.MustParseRange(">=1.11.0")
	oldSchemaPlugin     = semver.MustParseRange(">=1.3.6")
)

// Resolve maps a controller version and a plugin version to the schema in
// effect. Pre-release suffixes do not keep a version out of its band, so
// 1.10.0-rc1 counts as 1.10.0. A malformed version yields the zero value
// and an error.
func Resolve(controllerVersion, pluginVersion string) (Compatibility, error) {
	controller, err := parse(controllerVersion)
	if err != nil {
		return Compatibility{}, fmt.Errorf("invalid controller version: %w", err)
	}
	plugin, err := parse(pluginVersion)
	if err != nil {
		return Compatibility{}, fmt.Errorf("invalid plugin version: %w", err)
	}

	switch {
	case newSchemaController(controller) && newSchemaPlugin(plugin):
		return Compatibility{NewSchema: true}, nil
	case oldSchemaController(controller) && oldSchemaPlugin(plugin):
		return Compatibility{OldSchema: true}, nil
	default:
		return Compatibility{}, nil
	}
}

// Schema returns the report schema to read, if any.
func (c Compatibility) Schema() (policyreport.Schema, bool) {
	switch {
	case c.NewSchema:
		return policyreport.SchemaNew, true
	case c.OldSchema:
		return policyreport.SchemaOld, true
	default:
		return policyreport.Schema{}, false
	}
}

func (c Compatibility) String() string {
	switch {
	case c.NewSchema:
		return "new"
	case c.OldSchema:
		return "old"
	default:
		return "unknown"
	}
}

func parse(v string) (semver.Version, error) {
	if v == "" {
		return semver.Version{}, fmt.Errorf("empty version")
	}
	version, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, err
	}
	version.Pre = nil
	version.Build = nil
	return version, nil
}
