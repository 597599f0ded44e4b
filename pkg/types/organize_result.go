package types

// Outcome is the result class of one executed operation.
type Outcome int

const (
	Succeeded Outcome = iota
	SkippedVanished
	SkippedPermission
	SkippedOtherError
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case SkippedVanished:
		return "skipped (vanished)"
	case SkippedPermission:
		return "skipped (permission denied)"
	default:
		return "skipped (error)"
	}
}

// OpResult holds the outcome of an organization attempt for a single file
type OpResult struct {
	Operation Operation `json:"operation"`
	Outcome   Outcome   `json:"outcome"`
	Bytes     int64     `json:"bytes"`
	Err       error     `json:"-"`
}

// Summary aggregates the results of one run.
type Summary struct {
	RunID       string
	Mode        string
	Planned     int
	Counts      map[Outcome]int
	Bytes       int64
	Reaped      int
	ReapFailed  []SkipEvent
	PlanSkipped []SkipEvent
	Failures    []OpResult
}

// NewSummary builds a summary from executed results.
func NewSummary(runID, mode string, plan *Plan, results []OpResult) *Summary {
	s := &Summary{
		RunID:  runID,
		Mode:   mode,
		Counts: make(map[Outcome]int),
	}
	if plan != nil {
		s.Planned = len(plan.Operations)
		s.PlanSkipped = plan.Skipped
	}
	for _, r := range results {
		s.Counts[r.Outcome]++
		if r.Outcome == Succeeded {
			s.Bytes += r.Bytes
		} else {
			s.Failures = append(s.Failures, r)
		}
	}
	return s
}

// Attempted is the number of operations that were tried.
func (s *Summary) Attempted() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Succeeded is the number of operations that completed.
func (s *Summary) Succeeded() int {
	return s.Counts[Succeeded]
}
