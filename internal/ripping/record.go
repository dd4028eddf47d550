package ripping

import (
	"context"
	"time"

	"discsplit/internal/history"
	"discsplit/internal/logging"
)

func (p *Pipeline) record(ctx context.Context, outcome Outcome, input, output string, started time.Time, runErr error) {
	if p.recorder == nil {
		return
	}
	run := history.Run{
		ID:         outcome.RunID,
		Kind:       outcome.Kind.String(),
		Input:      input,
		Output:     output,
		Artist:     outcome.Album.Artist,
		Album:      outcome.Album.Title,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Succeeded:  outcome.Report.Succeeded(),
		Failed:     len(outcome.Report.Failed()),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	for _, res := range outcome.Report.Results {
		job := history.Job{
			Seq:        res.Seq,
			TrackIndex: res.Job.Index,
			Name:       res.Job.Name,
			Output:     res.Job.Output,
			ExitCode:   res.ExitCode,
			Elapsed:    res.Elapsed,
		}
		if res.Err != nil {
			job.Error = res.Err.Error()
		}
		run.Jobs = append(run.Jobs, job)
	}
	if err := p.recorder.RecordRun(ctx, run); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to record run history", logging.Error(err))
	}
}
