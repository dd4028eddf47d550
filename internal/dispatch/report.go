package dispatch

import (
	"fmt"
	"time"

	"discsplit/internal/extract"
	"discsplit/internal/services"
)

// Result records how one job's transcode process ended.
type Result struct {
	Seq      int
	Job      extract.Job
	ExitCode int
	Err      error
	Elapsed  time.Duration
	// Output is the tail of the process's combined output.
	Output string
}

// OK reports whether the job succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Report aggregates the results of one dispatch.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Succeeded counts successful jobs.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the failed results in sequence order.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err summarises failures, or returns nil when every job succeeded.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	first := failed[0]
	return services.Wrap(
		services.ErrExternalTool,
		"dispatch",
		"transcode",
		fmt.Sprintf("%d of %d jobs failed; first: seq %d (%s) exit %d", len(failed), len(r.Results), first.Seq, first.Job.Output, first.ExitCode),
		first.Err,
	)
}
