// Package template implements the path template grammar and the
// matcher/formatter compiler. A pattern string is parsed into an ordered
// sequence of segments: literal text, token references and template
// references. An expanded segment sequence (produced by the registry)
// compiles into a dual-purpose value that can parse a concrete path into
// fields and format fields into a concrete path.
package template
