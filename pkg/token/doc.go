// Package token implements typed path placeholders. A Spec describes one
// placeholder's constraints: its value type, an optional default, an
// optional set of valid choices, and numeric padding. Specs know how to
// format a typed value into its on-disk string form and how to parse a
// captured string back into a typed value.
package token
