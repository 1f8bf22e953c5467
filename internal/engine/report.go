package engine

import (
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/route"
)

// Step records the execution of one item.
type Step struct {
	Seq     int64   `json:"seq"`
	ID      item.ID `json:"id"`
	Kind    string  `json:"kind"`
	Stale   bool    `json:"stale"`
	Route   string  `json:"route,omitempty"`
	Written bool    `json:"written,omitempty"`
	Rules   int     `json:"rules,omitempty"`
}

// Report summarises a successful run.
type Report struct {
	RunID    string        `json:"run_id"`
	FirstRun bool          `json:"first_run"`
	Items    int           `json:"items"`
	Order    []item.ID     `json:"order"`
	Modified []item.ID     `json:"modified"`
	Stale    []item.ID     `json:"stale"`
	Routes   []route.Entry `json:"routes"`
	Written  []string      `json:"written"`
	Steps    []Step        `json:"steps"`
}

// Plan is the result of checking a site without executing it.
type Plan struct {
	Items  int         `json:"items"`
	Order  []item.ID   `json:"order,omitempty"`
	Cycles [][]item.ID `json:"cycles,omitempty"`
}
