package workflow

import (
	"context"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
)

// Journal writes are observational: failures downgrade to warnings so a
// history problem never aborts a render.

func (p *Pipeline) journalStart(ctx context.Context, runKey string, outcome *Outcome) int64 {
	if p.journal == nil {
		return 0
	}
	id, err := p.journal.StartRun(ctx, runKey, outcome.Decade, outcome.Title, outcome.Encoder)
	if err != nil {
		p.logger.Warn("journal start failed, run history will be incomplete", logging.Error(err))
		return 0
	}
	return id
}

func (p *Pipeline) journalSegment(ctx context.Context, runID int64, result SegmentOutcome) {
	if p.journal == nil || runID == 0 {
		return
	}
	if err := p.journal.RecordSegment(ctx, runID, result.record()); err != nil {
		p.logger.Warn("journal segment record failed",
			logging.String(logging.FieldSegment, result.Name),
			logging.Error(err))
	}
}

func (p *Pipeline) journalComplete(ctx context.Context, runID int64, outcome *Outcome) {
	if p.journal == nil || runID == 0 {
		return
	}
	if err := p.journal.CompleteRun(ctx, runID, outcome.EpisodePath, outcome.counters()); err != nil {
		p.logger.Warn("journal completion failed", logging.Error(err))
	}
}

func (p *Pipeline) journalFail(ctx context.Context, runID int64, outcome *Outcome, runErr error) {
	if p.journal == nil || runID == 0 {
		return
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	if err := p.journal.FailRun(ctx, runID, message, outcome.counters()); err != nil {
		p.logger.Warn("journal failure record failed", logging.Error(err))
	}
}
