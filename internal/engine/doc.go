// Package engine runs incremental builds.
//
// A run initialises the store and resource provider, asks the population
// step for rules, builds the dependency graph, refuses cyclic graphs,
// persists the graph for the next run, works out which items changed, and
// then executes every item in dependency order, writing routed outputs
// under the destination directory.
//
// Evaluation is single-threaded: the order produced by the analyzer is the
// only source of sequencing. Each item is compiled exactly once per run.
//
// Persisted state lives in the store:
//
//	kiln/graph                         dependency graph of the last run
//	kiln/resource/<path>/checksum      last observed resource checksum
//	kiln/output/<id>                   serialised final output
//	kiln/compiler/<name>/<id>          compiler caches
//
// plus the run ledger. A run whose predecessor did not succeed is treated
// as a first run.
package engine
