// Package report renders fingerprint results. Template mode substitutes
// single-brace {name} placeholders through valyala/fasttemplate, one line
// per entry; JSON mode writes one object per line.
package report
