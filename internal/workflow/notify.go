package workflow

import (
	"context"
	"errors"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
)

func (p *Pipeline) notifyFinished(ctx context.Context, outcome *Outcome) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.NotifyEpisodeFinished(ctx, outcome.Title, outcome.EpisodePath, outcome.Elapsed); err != nil {
		p.logger.Debug("episode notification failed", logging.Error(err))
	}
}

func (p *Pipeline) notifyFailure(ctx context.Context, title string, runErr error) {
	if p.notifier == nil || runErr == nil {
		return
	}
	// A canceled run was stopped on purpose; there is nothing to report.
	if errors.Is(runErr, context.Canceled) {
		return
	}
	if err := p.notifier.NotifyRunFailed(ctx, title, runErr); err != nil {
		p.logger.Debug("failure notification failed", logging.Error(err))
	}
}
