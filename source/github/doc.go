// Package github implements source.Source on top of the
// GitHub contents API, reading files at a configured ref
// from github.com or a GitHub Enterprise host.
package github
