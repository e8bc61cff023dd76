package coding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// ModelProvider hands out trained Naive Bayes models, rebuilding them lazily
// from history when the cached copy has expired. Concurrent misses may train
// the same model twice; the result is identical so no locking is needed.
type ModelProvider struct {
	repo   coding.CashHistoryRepository
	cache  coding.ModelCache
	params coding.Params
	logger *zap.Logger
}

// NewModelProvider creates a new ModelProvider.
func NewModelProvider(repo coding.CashHistoryRepository, cache coding.ModelCache, params coding.Params, logger *zap.Logger) *ModelProvider {
	return &ModelProvider{repo: repo, cache: cache, params: params, logger: logger}
}

// Get returns the model for a (direction, target) pair, training one when
// the cache misses. A failed history read degrades to an empty model rather
// than an error: the ensemble then simply lacks the Bayes signal.
func (p *ModelProvider) Get(ctx context.Context, dir coding.Direction, target coding.Target) *coding.Model {
	key := modelKey(dir, target)
	if model, ok := p.cache.Get(ctx, key); ok {
		return model
	}

	entries, err := p.repo.FindByDirection(ctx, dir, p.params.TrainingWindow)
	if err != nil {
		p.logger.Warn("model training read failed", zap.String("key", key), zap.Error(err))
		return &coding.Model{Direction: dir, Target: target, Buckets: p.params.BayesBuckets}
	}

	model := coding.TrainModel(entries, dir, target, p.params)
	p.cache.Set(ctx, key, model, p.params.ModelTTL)
	p.logger.Info("trained naive bayes model",
		zap.String("key", key),
		zap.Int("rows", len(entries)),
		zap.Int("labels", len(model.DocCount)),
	)
	return model
}

// Warm eagerly trains all four models so the first request does not pay the
// training cost.
func (p *ModelProvider) Warm(ctx context.Context) {
	for _, dir := range []coding.Direction{coding.DirectionIn, coding.DirectionOut} {
		for _, target := range []coding.Target{coding.TargetCash, coding.TargetCounterpart} {
			p.Get(ctx, dir, target)
		}
	}
}

func modelKey(dir coding.Direction, target coding.Target) string {
	return fmt.Sprintf("nb:%s:%s", dir, target)
}
