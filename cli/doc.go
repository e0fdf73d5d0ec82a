// Package cli implements the conf_checksum command: it reads each path
// from the selected source, prints its configuration fingerprint and
// optionally saves or checks the fingerprint against a .digest sidecar.
//
// Run returns ExitOK on success, ExitFailure on any error (including a
// path that is not found or not valid UTF-8), ExitUsage for bad flags
// and ExitChanged when --check finds a changed fingerprint.
package cli
