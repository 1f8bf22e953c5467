// Package item provides the identity and population types shared by every
// other kiln package.
//
// This package imports nothing internal. Identifiers are plain comparable
// values so they can key maps and graph nodes directly.
//
// Key constraints:
//   - Identifier paths are slash-separated and NFC-normalised
//   - A Population is built once per run and never mutated afterwards
//   - Population order is the declaration order of the population step
package item
