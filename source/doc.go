// Package source fetches raw configuration bytes and decodes them as
// text. Source is a strategy interface so the fingerprint pipeline can
// read from the local file system, a git hosting platform or a
// Kubernetes cluster without changing. Implementations report a missing
// resource by wrapping ErrNotFound.
package source
