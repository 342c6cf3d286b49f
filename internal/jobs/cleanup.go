package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/repository"
)

// RecordPruner drops expired in-memory purchase records. Implemented by
// service.PurchaseService.
type RecordPruner interface {
	PruneRecords() int
}

// CleanupJob periodically prunes expired purchase state: audit rows past
// their retention and in-memory dedup records past their TTL.
type CleanupJob struct {
	eventRepo repository.PurchaseEventRepository
	pruner    RecordPruner
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewCleanupJob(
	eventRepo repository.PurchaseEventRepository,
	pruner RecordPruner,
	retention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		eventRepo: eventRepo,
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if j.eventRepo != nil {
		cutoff := time.Now().Add(-j.retention)
		count, err := j.eventRepo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			log.Error().Err(err).Msg("failed to cleanup purchase events")
		} else if count > 0 {
			log.Info().Int64("count", count).Msg("cleaned up purchase events")
		}
	}

	if j.pruner != nil {
		if removed := j.pruner.PruneRecords(); removed > 0 {
			log.Info().Int("count", removed).Msg("pruned purchase dedup records")
		}
	}
}
