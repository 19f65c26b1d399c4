// Package file provides the file-based configuration store.
//
// Settings live in a single TOML or YAML file chosen by extension. Nested
// tables are flattened into dotted keys ("llm.model") on load and nested
// again on save, so both formats read naturally by hand.
package file
