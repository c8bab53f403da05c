package query

import (
	"fmt"
	"log/slog"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
	"github.com/gyaneshwarpardhi/lineage/internal/metrics"
)

// Apply builds cfg into a forest and swaps it in. cfg must already be valid.
func (e *Engine) Apply(cfg *config.LineageConfig) error {
	f, err := lineage.Build(cfg)
	if err != nil {
		metrics.Reloads.WithLabelValues("invalid").Inc()
		return fmt.Errorf("build lineages: %w", err)
	}
	e.SwapForest(f)
	metrics.Reloads.WithLabelValues("success").Inc()
	return nil
}

// Follow applies every config l accepts from now on, whether it comes from
// the file watcher or an explicit Reload.
func (e *Engine) Follow(l *config.Loader) {
	l.OnChange(func(cfg *config.LineageConfig) {
		if err := e.Apply(cfg); err != nil {
			slog.Warn("reload skipped", "err", err)
			return
		}
		f := e.Forest()
		slog.Info("lineages reloaded", "lineages", f.Len(), "vampires", f.NodeCount())
	})
}
