// Package assembly is a minimal AssemblyAI client: upload, create transcript,
// poll until completed.
package assembly
