// Package dispatch routes a resolved provider to its concrete backend and
// wraps every call in the retry executor. Callers receive only the
// providers.Transcriber or providers.Completer capability and never branch on
// provider identity themselves.
package dispatch
