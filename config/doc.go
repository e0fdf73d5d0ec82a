// Package config loads the optional TOML configuration of the
// conf_checksum CLI: report defaults, the sidecar suffix and the
// connection settings of each remote source.
package config
