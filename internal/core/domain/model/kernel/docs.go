// Package kernel contains shared value objects used across the domain model:
// identifiers, geographic points and fixed-point money. All types are
// immutable and validate themselves at construction.
package kernel
