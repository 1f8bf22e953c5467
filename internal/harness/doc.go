// Package harness runs multi-run build scenarios against the real engine.
//
// A scenario describes a site, then a sequence of builds with file edits
// in between, and states what each build should mark stale and write.
// It is how incremental behaviour is tested end to end: the second and
// later runs of a scenario exercise the persisted graph, checksums and
// ledger exactly as repeated `kiln build` invocations would.
//
// # Scenario Format
//
//	name: edit_one_post
//	description: "Editing a post rewrites it and the index only"
//	config: |
//	  rules:
//	    - match: "posts/*.md"
//	      route: "ext:.html"
//	files:
//	  posts/a.md: alpha
//	runs:
//	  - name: initial
//	    expect:
//	      first_run: true
//	      written: [posts/a.html]
//	  - name: edit
//	    write: { posts/a.md: "alpha, revised" }
//	    expect:
//	      modified: [posts/a.md]
//	      written: [posts/a.html]
//	assertions:
//	  - type: output
//	    path: posts/a.html
//	    content: "alpha, revised"
//
// Expectation lists are exact and ordered. An omitted list is not checked;
// an empty list ([]) asserts that nothing matched.
//
// # Assertion Types
//
//   - output: a destination file has the given content
//   - output_absent: a destination file does not exist
//   - order: items compiled in the given relative order during a run
//   - ledger: the run ledger holds the given statuses, newest first
//
// # Determinism
//
// Run IDs come from testutil.SequenceGenerator ("run-1", "run-2", ...) and
// compile steps are numbered across the whole scenario by
// testutil.DeterministicClock, so results can be compared against golden
// files with RunWithGolden.
package harness
