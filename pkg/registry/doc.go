// Package registry stores template definitions by name and resolves
// template-to-template references into fully-expanded segment sequences.
// Expansion is depth-first with an explicit visited stack for cycle
// detection. The store is typically populated once at startup and treated
// as read-only afterwards; registration and resolution are safe to
// interleave from multiple goroutines.
package registry
