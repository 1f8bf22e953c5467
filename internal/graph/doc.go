// Package graph implements a small generic directed graph used for
// dependency analysis.
//
// Edges point from a dependent to its dependency: an edge a → b means
// "a depends on b". Orders produced by this package therefore list b
// before a.
//
// Every query is deterministic. Nodes keep their insertion order (keys of
// FromEdges first, then nodes that only appear as edge targets) and all
// ties are broken by that order, so two graphs with identical structure
// and input order produce byte-identical results.
package graph
