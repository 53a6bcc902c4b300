package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/libs/gitrepo"
	"go.uber.org/zap"
)

// Harvester is the mirror-then-summarize pipeline run for every ref.
type Harvester struct {
	l                *zap.Logger
	mirrors          *gitrepo.Mirrors
	cloneTimeout     time.Duration
	summarizeTimeout time.Duration
}

// NewHarvester creates a pipeline over mirrors. A zero timeout means none.
func NewHarvester(l *zap.Logger, mirrors *gitrepo.Mirrors, cloneTimeout, summarizeTimeout time.Duration) *Harvester {
	return &Harvester{
		l:                l,
		mirrors:          mirrors,
		cloneTimeout:     cloneTimeout,
		summarizeTimeout: summarizeTimeout,
	}
}

// Harvest brings the mirror of ref up to date and counts its commits per author email.
func (h *Harvester) Harvest(ctx context.Context, ref repos.Ref) (map[string]int, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", gitrepo.ErrMirrorUnavailable, err)
	}

	l := h.l.With(zap.Int64("rank", ref.Rank), zap.String("repo", ref.String()))

	start := time.Now()
	cloneCtx, cancel := withTimeout(ctx, h.cloneTimeout)
	mirror, err := h.mirrors.Ensure(cloneCtx, ref.Owner, ref.Project)
	cancel()
	if err != nil {
		return nil, err
	}

	l.Debug("mirror ready",
		zap.String("revision", mirror.Revision),
		zap.Duration("took", time.Since(start)),
	)

	summarizeCtx, cancel := withTimeout(ctx, h.summarizeTimeout)
	defer cancel()

	counts, err := gitrepo.Summarize(summarizeCtx, mirror)
	if err != nil {
		return nil, err
	}

	l.Debug("summarized", zap.Int("contributors", len(counts)))
	return counts, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
