// Package confclass maps configuration files onto declared struct types.
//
// - Schemas are declared once per struct type with Define[T] and held in
//   a process-global registry (section name, root flag, key remaps,
//   per-field codecs, defaults).
// - A Parser binds one file path and one Format adapter, loads the raw
//   document at construction, and synthesizes a complete default
//   document when the file is missing and creation is permitted.
// - Get[T] resolves a typed instance on demand, recursing into nested
//   schema fields and coercing primitive mismatches along the way.
//
// Design policy:
// - Keep only public APIs in the root package; concrete file-format
//   adapters live under format/, the CLI under cmd/confclass.
// - Nested-config detection goes through the registry, never through
//   structural checks on a type.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	var _ = confclass.Define[ServerConfig]().
//		Section("server").
//		Default("Port", 8080).
//		MustRegister()
//
//	p, err := confclass.New("app.toml", format.TOML(),
//		confclass.Schemas(confclass.Of[ServerConfig]()),
//		confclass.CreateMissing(),
//	)
//	srv, err := confclass.Get[ServerConfig](p)
package confclass
