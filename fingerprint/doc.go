// Package fingerprint computes a stable fingerprint of a configuration
// file's significant content. Blank lines, comments (# and ;), disabled
// directives (!) and lines carrying an encrypted API key marker are
// dropped; the surviving lines are trimmed, joined with newlines and
// digested with MD5 into 32 lowercase hex characters.
package fingerprint
