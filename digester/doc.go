// Package digester stores and verifies configuration fingerprints. It
// keeps each fingerprint in a companion .digest file alongside the
// original, enabling skip-if-unchanged checks across runs.
package digester
