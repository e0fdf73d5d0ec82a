// Package gitlab implements source.Source on top of the GitLab repository
// files API.
package gitlab
