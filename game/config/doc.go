// Package config loads rule sets and server settings.
//
// Manager serves named rule sets from a directory of JSON files, with a
// cache and a built-in "classic" fallback so the server always has a
// playable default. ServerSettings covers the process-level knobs
// (listen address, storage backend, directories) and is loaded from a
// YAML file.
package config
