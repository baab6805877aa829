// Package document parses TOML manifests into a concrete syntax tree that
// keeps every byte of the source: comments, blank lines, key order, quoting
// and spacing. Rendering an unmodified Document reproduces its input exactly.
//
// Edits go through TableHandle views. Removing an entry drops only that
// entry's text; inserted entries borrow the spacing of a neighbouring entry
// and write values as double-quoted basic strings.
package document
