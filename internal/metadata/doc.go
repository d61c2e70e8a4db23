// Package metadata derives show-note identity for each kind of source and
// renders it as YAML front matter.
package metadata
