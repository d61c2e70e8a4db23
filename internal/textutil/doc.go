// Package textutil turns titles and filenames into filesystem-safe base names
// and derives display titles from filenames.
package textutil
