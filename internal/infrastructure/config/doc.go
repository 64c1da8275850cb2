// Package config provides configuration loading for the Digital Twin
// Analyzer tooling.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// DITTOCTL_* environment variables. The file is optional: the tool is
// designed to work against a local Ditto sandbox out of the box. Still, a
// present-and-broken file is always an error.
//
// The orchestration manifest (setup phases, steps, shell commands) is a
// separate document owned by the orchestrate package; this package only
// records where to find it.
package config
