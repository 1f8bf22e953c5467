// Package resource enumerates and reads source files and answers whether a
// file changed since the previous run.
//
// Change detection compares a SHA-256 checksum of the file contents with
// the checksum recorded in the store by the previous run. Checking a
// resource updates the recorded checksum, so the answer is memoised for the
// lifetime of the Provider: asking twice in one run gives the same result.
package resource
