package models

// ProgressSnapshot is an immutable view of a run's progress
type ProgressSnapshot struct {
	Total       int
	Processed   int
	Succeeded   int
	Failed      int
	CurrentFile string
}

// Done reports whether every file has been processed
func (p ProgressSnapshot) Done() bool {
	return p.Processed >= p.Total
}

// Percent returns the processed ratio in the range [0, 100]
func (p ProgressSnapshot) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Processed) * 100 / float64(p.Total)
}

// OperationCounters are cumulative filesystem operation counts
type OperationCounters struct {
	Moved  int64 `json:"moved"`
	Copied int64 `json:"copied"`
	Failed int64 `json:"failed"`
}

// Total returns the number of attempted operations
func (c OperationCounters) Total() int64 {
	return c.Moved + c.Copied + c.Failed
}
