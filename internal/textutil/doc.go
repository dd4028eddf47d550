// Package textutil provides filename sanitization and name normalization for
// track titles that end up in output paths and metadata tags.
package textutil
