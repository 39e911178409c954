package clipstore

import (
	"go.uber.org/zap"
)

// Cleaner удаляет промежуточные клипы после успешного экспорта.
type Cleaner struct {
	logger *zap.SugaredLogger
}

func NewCleaner(logger *zap.SugaredLogger) *Cleaner { return &Cleaner{logger: logger} }

// Clean удаляет клипы indices из store. В режиме keep — ничего не делает.
// Ошибки удаления логируются и не прерывают очистку. Возвращает число удалённых клипов.
func (c *Cleaner) Clean(store *Store, indices []int, keep bool) int {
	if keep {
		c.logger.Debugw("Clips kept on disk", "dir", store.Dir(), "count", len(indices))
		return 0
	}

	removed := 0
	for _, idx := range indices {
		if !store.Has(idx) {
			continue
		}
		if err := store.Remove(idx); err != nil {
			c.logger.Warnw("Не удалось удалить клип", "path", store.Path(idx), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		c.logger.Infow("Intermediate clips removed", "dir", store.Dir(), "removed", removed)
	}
	return removed
}
