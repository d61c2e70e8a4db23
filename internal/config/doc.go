// Package config loads, normalizes, and validates autoshow configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for provider
// API keys such as OPENAI_API_KEY and DEEPGRAM_API_KEY. Environment lookups
// happen only during Load; afterwards the keys travel as an explicit
// providers.Keys value.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
