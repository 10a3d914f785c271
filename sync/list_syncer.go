// ABOUTME: Orchestrates syncing Planning Center lists into Google Groups
// ABOUTME: Fetches both sides, reconciles them, applies removals then additions, and records history
package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/groupsync/db"
	"github.com/harperreed/groupsync/metrics"
	"github.com/harperreed/groupsync/models"
	"go.uber.org/zap"
)

// ContactSource provides the source-of-truth contacts for a list.
type ContactSource interface {
	GetContacts(ctx context.Context, list string) ([]models.Contact, error)
}

// StaticContactProvider provides configured contacts merged into every source list.
type StaticContactProvider interface {
	GetContacts(list string) []models.Contact
}

// ContactDestination is the list being kept in sync.
type ContactDestination interface {
	GetContacts(ctx context.Context, list string) ([]models.Contact, error)
	AddContact(ctx context.Context, list string, contact models.Contact) error
	RemoveContact(ctx context.Context, list string, contact models.Contact) error
}

// ListSyncReport describes the outcome of syncing one list.
type ListSyncReport struct {
	ListName    string
	RunID       string
	DryRun      bool
	SourceCount int
	DestCount   int
	Diff        *ListDiff
	Added       int
	Removed     int
	// Skipped holds destination members that cannot be removed because they have no email.
	Skipped []models.Contact
}

// ListSyncer syncs lists one at a time. Static, DB, and Metrics are optional.
type ListSyncer struct {
	Source      ContactSource
	Static      StaticContactProvider
	Destination ContactDestination
	DB          *sql.DB
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	DryRun      bool
}

func (s *ListSyncer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// PreviewList computes the diff for a list without touching the destination or history.
func (s *ListSyncer) PreviewList(ctx context.Context, list string) (*ListSyncReport, error) {
	report := &ListSyncReport{ListName: list, DryRun: true}
	if err := s.analyze(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// SyncList reconciles a single list. In dry-run mode the diff is computed and
// recorded but nothing is written to the destination.
func (s *ListSyncer) SyncList(ctx context.Context, list string) (*ListSyncReport, error) {
	log := s.logger().With(zap.String("list", list), zap.Bool("dry_run", s.DryRun))
	report := &ListSyncReport{ListName: list, DryRun: s.DryRun}

	var run *db.SyncRun
	if s.DB != nil {
		var err error
		run, err = db.StartRun(s.DB, list, s.DryRun)
		s.history(log, err)
		if run != nil {
			report.RunID = run.ID
		}
		s.history(log, db.UpdateSyncStatus(s.DB, list, db.StatusSyncing, nil))
	}

	err := s.syncList(ctx, report, run)
	s.finish(log, report, run, err)
	if err != nil {
		return report, err
	}

	log.Info("list synced",
		zap.Int("source", report.SourceCount),
		zap.Int("destination", report.DestCount),
		zap.Int("to_add", len(report.Diff.ToAdd)),
		zap.Int("to_remove", len(report.Diff.ToRemove)),
		zap.Int("added", report.Added),
		zap.Int("removed", report.Removed),
	)

	return report, nil
}

func (s *ListSyncer) analyze(ctx context.Context, report *ListSyncReport) error {
	source, err := s.Source.GetContacts(ctx, report.ListName)
	if err != nil {
		return fmt.Errorf("failed to fetch source contacts: %w", err)
	}
	if s.Static != nil {
		source = append(source, s.Static.GetContacts(report.ListName)...)
	}

	dest, err := s.Destination.GetContacts(ctx, report.ListName)
	if err != nil {
		return fmt.Errorf("failed to fetch destination contacts: %w", err)
	}

	report.SourceCount = len(source)
	report.DestCount = len(dest)
	report.Diff = AnalyzeContactLists(source, dest)

	return nil
}

func (s *ListSyncer) syncList(ctx context.Context, report *ListSyncReport, run *db.SyncRun) error {
	if err := s.analyze(ctx, report); err != nil {
		return err
	}

	log := s.logger().With(zap.String("list", report.ListName))
	list := report.ListName

	for _, contact := range report.Diff.ToRemove {
		if !contact.HasEmail() {
			log.Warn("skipping removal of member without email")
			report.Skipped = append(report.Skipped, contact)
			continue
		}
		if !s.DryRun {
			if err := s.Destination.RemoveContact(ctx, list, contact); err != nil {
				return fmt.Errorf("failed to remove %s: %w", contact.Email, err)
			}
			report.Removed++
		}
		s.logChange(log, run, db.ActionRemove, contact.Email)
	}

	for _, contact := range report.Diff.ToAdd {
		if !s.DryRun {
			if err := s.Destination.AddContact(ctx, list, contact); err != nil {
				return fmt.Errorf("failed to add %s: %w", contact.Email, err)
			}
			report.Added++
		}
		s.logChange(log, run, db.ActionAdd, contact.Email)
	}

	return nil
}

func (s *ListSyncer) logChange(log *zap.Logger, run *db.SyncRun, action, email string) {
	log.Debug("membership change", zap.String("action", action), zap.String("email", email), zap.Bool("applied", !s.DryRun))
	if s.DB == nil || run == nil {
		return
	}
	s.history(log, db.LogChange(s.DB, run.ID, run.ListName, action, email, !s.DryRun))
}

func (s *ListSyncer) finish(log *zap.Logger, report *ListSyncReport, run *db.SyncRun, syncErr error) {
	if syncErr != nil {
		log.Error("list sync failed", zap.Error(syncErr))
		if s.Metrics != nil {
			s.Metrics.RecordError(report.ListName)
		}
	} else if s.Metrics != nil && !s.DryRun {
		s.Metrics.RecordSuccess(report.ListName, report.Added, report.Removed, time.Now())
	}

	if s.DB == nil {
		return
	}

	var errMsg *string
	if syncErr != nil {
		msg := syncErr.Error()
		errMsg = &msg
	}

	switch {
	case syncErr != nil:
		s.history(log, db.UpdateSyncStatus(s.DB, report.ListName, db.StatusError, errMsg))
	case s.DryRun:
		s.history(log, db.UpdateSyncStatus(s.DB, report.ListName, db.StatusIdle, nil))
	default:
		s.history(log, db.MarkListSynced(s.DB, report.ListName, report.RunID))
	}

	if run == nil {
		return
	}

	run.SourceCount = report.SourceCount
	run.DestCount = report.DestCount
	run.Added = report.Added
	run.Removed = report.Removed
	if report.DryRun && report.Diff != nil {
		run.Added = len(report.Diff.ToAdd)
		run.Removed = len(report.Diff.ToRemove) - len(report.Skipped)
	}

	run.Status = db.RunSuccess
	if syncErr != nil {
		run.Status = db.RunError
		run.ErrorMessage = errMsg
	}

	s.history(log, db.FinishRun(s.DB, run))
}

// history logs failures to write sync history. History is best effort and
// never fails a sync that otherwise succeeded.
func (s *ListSyncer) history(log *zap.Logger, err error) {
	if err != nil {
		log.Warn("failed to record sync history", zap.Error(err))
	}
}

// SyncLists syncs each list in order. A failing list is logged and recorded but
// does not stop the remaining lists; all failures are returned joined.
func (s *ListSyncer) SyncLists(ctx context.Context, lists []string, onProgress func(index, total int, list string)) ([]*ListSyncReport, error) {
	reports := make([]*ListSyncReport, 0, len(lists))
	var errs []error

	for i, list := range lists {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if onProgress != nil {
			onProgress(i+1, len(lists), list)
		}

		report, err := s.SyncList(ctx, list)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s: %w", list, err))
			continue
		}
		reports = append(reports, report)
	}

	return reports, errors.Join(errs...)
}
