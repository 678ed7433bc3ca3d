package toskema

// Package toskema provides:
//
// - A declarative schema language for TOML-like documents, written in the
//   same document format as the data it validates
// - A compiler from schema documents to an immutable in-memory schema tree
//   (Compile/CompileTOML/CompileJSON/CompileYAML)
// - A matching engine producing a stable error model via SchemaError
//   (path, code, message) with Check and default-injecting CheckAndComplete
// - Non-fatal compile diagnostics via Diag (unknown keys, unusable defaults)
//
// Design policy:
// - Keep only public APIs in the root package; put the message dictionary
//   under i18n/ and the CLI under cmd/toskema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	schema, diag, err := toskema.CompileTOML(schemaDoc)
//	doc, err := toskema.DecodeTOML(data)
//	err = schema.Check(doc)
//	err = schema.CheckAndComplete(doc) // fills declared defaults in place
