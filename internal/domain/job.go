package domain

// JobStatus is the terminal state of one hotel's pagination attempt. Every
// hotel in a run ends in exactly one of these.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobPartial   JobStatus = "partial"
	JobFailed    JobStatus = "failed"
	JobSkipped   JobStatus = "skipped" // invalid reference, no work attempted
)

// FetchJob tracks one (hotel, criteria) pairing while a run is in flight and
// carries its terminal outcome afterwards.
type FetchJob struct {
	Reference string // as supplied by the user
	HotelID   string // empty when resolution failed
	Pages     int
	Reviews   int
	Status    JobStatus
	Err       error
}

// RunReport is the scheduler's run-level summary.
type RunReport struct {
	Jobs []FetchJob
}

// Complete reports whether every hotel ended non-failed and non-skipped.
func (r RunReport) Complete() bool {
	for _, j := range r.Jobs {
		if j.Status == JobFailed || j.Status == JobSkipped {
			return false
		}
	}
	return true
}

// Failing lists the references of hotels that ended failed or skipped.
func (r RunReport) Failing() []string {
	var refs []string
	for _, j := range r.Jobs {
		if j.Status == JobFailed || j.Status == JobSkipped {
			refs = append(refs, j.Reference)
		}
	}
	return refs
}

// TotalReviews sums reviews collected across all jobs.
func (r RunReport) TotalReviews() int {
	n := 0
	for _, j := range r.Jobs {
		n += j.Reviews
	}
	return n
}
