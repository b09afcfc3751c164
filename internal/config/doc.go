// Package config provides editor configuration, including the document
// schema, for richcore sessions.
//
// Configuration is read from TOML or YAML files; the format is chosen by
// file extension. A complete default configuration is embedded in the
// package and returned by Default.
//
// # File Layout
//
//	log_level = "info"
//
//	[lists]
//	bullet = "bullet_list"
//	ordered = "ordered_list"
//	item = "list_item"
//
//	[indent]
//	container = "indent"
//
//	[schema]
//	top_node = "doc"
//
//	[[schema.nodes]]
//	name = "paragraph"
//	content = "inline*"
//	group = "block"
//
//	[[schema.marks]]
//	name = "link"
//	inclusive = false
//	[schema.marks.attrs.href]
//
// An attribute table without a "default" key declares a required attribute.
//
// # Live Reload
//
// The watcher subpackage watches a configuration file with fsnotify and
// delivers freshly decoded configurations to a callback.
package config
