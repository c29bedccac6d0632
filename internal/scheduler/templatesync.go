package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/metrics"
	"github.com/jeffreydtz/canchaya-slots/internal/schedule"
	"github.com/jeffreydtz/canchaya-slots/internal/store"
)

const templateSyncTimeout = 2 * time.Minute

// RegisterTemplateSyncJob keeps the local store's weekly templates fresh by
// pulling the backend pattern for every stored court on a cron schedule.
// The fallback path of reconciliation reads whatever the store has; this
// job only narrows how stale that can get.
func RegisterTemplateSyncJob(svc *Service, st *store.Store, source schedule.TemplateStore, cronExpr string) error {
	if st == nil {
		return fmt.Errorf("template sync requires a local store")
	}
	if source == nil {
		return fmt.Errorf("template sync requires a remote template source")
	}

	jobName := "weekly_template_sync"
	jobLogger := log.With().
		Str("component", "template_sync_job").
		Str("job_name", jobName).
		Logger()

	_, err := svc.AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), templateSyncTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if err := SyncTemplates(ctx, st, source); err != nil {
			metrics.TemplateSyncTotal.WithLabelValues("error").Inc()
			jobLogger.Error().Err(err).Msg("Template sync failed")
			return
		}
		metrics.TemplateSyncTotal.WithLabelValues("ok").Inc()
	})
	return err
}

// SyncTemplates refreshes the stored weekly pattern for every known court.
// Courts the backend no longer knows keep their last synced pattern.
func SyncTemplates(ctx context.Context, st *store.Store, source schedule.TemplateStore) error {
	courtIDs, err := st.ListCourtIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing courts for sync: %w", err)
	}

	logger := log.Ctx(ctx)
	var failures int
	for _, courtID := range courtIDs {
		entries, err := source.GetWeeklyTemplate(ctx, courtID)
		if err != nil {
			failures++
			logger.Warn().Err(err).Str("court_id", courtID).Msg("Skipping court: template fetch failed")
			continue
		}
		for i := range entries {
			entries[i].CourtID = courtID
		}
		if err := st.ReplaceWeeklyTemplate(ctx, courtID, entries); err != nil {
			failures++
			logger.Error().Err(err).Str("court_id", courtID).Msg("Skipping court: template store failed")
			continue
		}
		logger.Debug().Str("court_id", courtID).Int("entries", len(entries)).Msg("Synced weekly template")
	}

	if failures > 0 {
		return fmt.Errorf("template sync finished with %d failed courts of %d", failures, len(courtIDs))
	}
	return nil
}
