// Package config loads, validates and merges the two configuration layers
// of wincross: the project config (wincross.toml, committed to the
// repository) and the machine config (.wincross/build_config.json,
// host-local and never committed).
//
// Both layers are loaded once per CLI invocation and combined by Merge
// with CLI-flag and environment overrides into one EffectiveConfig, with
// the precedence CLI > environment > machine config > project config.
// Every placeholder-bearing value is fully resolved during the merge, so
// downstream components never see a {...} token.
//
// Both file formats use an explicit schema: unknown keys fail closed with
// an error naming the key, rather than being silently dropped.
package config
