package types

import (
	"fmt"
	"sort"
)

// Operation is a single planned transfer of one file.
type Operation struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (o Operation) String() string {
	return fmt.Sprintf("%s -> %s", o.Source, o.Destination)
}

// SkipEvent records an entry the planner or reaper could not process.
type SkipEvent struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Plan is the ordered list of operations produced by one scan, together with
// every destination folder those operations need.
type Plan struct {
	Operations      []Operation
	RequiredFolders map[string]struct{}
	Skipped         []SkipEvent
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{RequiredFolders: make(map[string]struct{})}
}

// Add appends op and records its destination folder.
func (p *Plan) Add(op Operation, folder string) {
	p.Operations = append(p.Operations, op)
	p.RequiredFolders[folder] = struct{}{}
}

// Skip records an entry that was not planned.
func (p *Plan) Skip(path, reason string, err error) {
	p.Skipped = append(p.Skipped, SkipEvent{Path: path, Reason: reason, Err: err})
}

// Empty reports whether the plan has no operations.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// SortedFolders returns the required folders in lexicographic order.
func (p *Plan) SortedFolders() []string {
	folders := make([]string, 0, len(p.RequiredFolders))
	for f := range p.RequiredFolders {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders
}
