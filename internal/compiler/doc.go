// Package compiler defines the compile procedure contract and the
// compilation registry.
//
// A Compiler declares the items it depends on and, when executed, returns
// a Result: either a Final output to be routed and written, or a Meta
// result carrying new rules to register for the rest of the run.
//
// Built-in compilers cover the common cases: Copy, Concat, Index, Alias,
// Expand and the Func adapter.
package compiler
