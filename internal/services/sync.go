package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"labstock/internal/caching"
	"labstock/internal/models"
	"labstock/internal/repositories"
)

// Store identities of the dual store.
const (
	StoreCurrent = "current" // always-latest inventory
	StoreHistory = "history" // append-only ledger of changes
)

// Typed confirmation strings for destructive actions. Anything else aborts
// the delete with no effect.
const (
	ConfirmDelete    = "ELIMINAR"
	ConfirmDeleteAll = "ELIMINAR TODO"
)

var (
	// ErrBadConfirmation rejects a destructive action whose confirmation
	// string does not match exactly.
	ErrBadConfirmation = errors.New("confirmation text does not match")
	// ErrPanelNotFound is returned for operations on an unknown panel.
	ErrPanelNotFound = errors.New("panel not found")
	// ErrUnknownStore is returned for an unrecognized store identity.
	ErrUnknownStore = errors.New("unknown store")
)

// StoreOutcome is the result of one store's save phase. The two stores share
// no transaction, so each phase succeeds or fails on its own and both results
// are always reported.
type StoreOutcome struct {
	Saved bool                `json:"saved"`
	Ref   *models.SnapshotRef `json:"ref,omitempty"`
	Error string              `json:"error,omitempty"`
}

// SaveOutcome reports both phases of a dual-store save.
type SaveOutcome struct {
	Current StoreOutcome `json:"current"`
	History StoreOutcome `json:"history"`
}

// EditOutcome is the full result of one saved mutation.
type EditOutcome struct {
	EditID uuid.UUID    `json:"edit_id"`
	Apply  *ApplyResult `json:"apply"`
	Save   SaveOutcome  `json:"save"`
}

// SyncService owns the in-memory working copy of both stores and keeps them
// in sync on disk: every saved mutation produces a new current-state snapshot
// and mirrors the edited record into the historical ledger. Mutations are
// serialized with one mutex; each store has a single writer.
type SyncService interface {
	// LoadStores discovers and loads the latest snapshot of each store.
	// Errors are recoverable per store: a failed load leaves that store's
	// in-memory state untouched.
	LoadStores(ctx context.Context) (currentErr, historyErr error)

	Panels(ctx context.Context) []string
	PanelRecords(ctx context.Context, panel string) ([]models.ReagentRecord, error)
	AnnotatedPanel(ctx context.Context, panel string) ([]models.AnnotatedRecord, error)

	// ExportPanel renders a panel's records as tabular rows under the
	// store's original column headers.
	ExportPanel(ctx context.Context, panel string) ([]models.Row, error)
	// ImportPanel replaces a panel's record set from tabular rows and saves
	// the current store. Imports are bulk loads, not edits: nothing enters
	// the ledger.
	ImportPanel(ctx context.Context, panel string, rows []models.Row) (int, StoreOutcome, error)

	ApplyEdit(ctx context.Context, panel string, index int, changes models.FieldChanges, selection []int) (*EditOutcome, error)
	Consume(ctx context.Context, panel string, index, quantity int) (*EditOutcome, error)

	History(ctx context.Context, panel string) ([]models.HistoricalEntry, error)
	// ReconcileDelete removes every ledger entry of the panel whose
	// (productName, lotNumber) matches exactly, case-sensitive. The lot
	// number is retyped by the operator as disambiguation, and the delete
	// confirmation string is required.
	ReconcileDelete(ctx context.Context, panel, productName, lotNumberTyped, confirm string) (int, SaveOutcome, error)

	CreateSnapshot(ctx context.Context, store string) (models.SnapshotRef, error)
	ListBuckets(ctx context.Context, store string) ([]string, error)
	ListSnapshots(ctx context.Context, store, bucket string) ([]models.SnapshotRef, error)
	DeleteSnapshot(ctx context.Context, store, bucket, name, confirm string) error
	DeleteBucket(ctx context.Context, store, bucket, confirm string) error
}

// SyncConfig carries store naming knobs.
type SyncConfig struct {
	CurrentPrefix  string // snapshot name prefix of the current store
	HistoryPrefix  string // snapshot name prefix of the historical store
	CurrentExclude string // name marker excluded from current-store discovery
	HistoryExclude string // name marker excluded from history-store discovery
	PanelViewTTL   time.Duration
}

type syncService struct {
	mu       sync.Mutex
	current  map[string][]models.ReagentRecord
	history  map[string][]models.HistoricalEntry
	grouping GroupingService
	stock    StockService

	currentRepo repositories.SnapshotRepository
	historyRepo repositories.SnapshotRepository
	cache       caching.CacheService
	backup      BackupService // optional
	cfg         SyncConfig
	log         zerolog.Logger
	now         func() time.Time
}

func NewSyncService(
	grouping GroupingService,
	stock StockService,
	currentRepo, historyRepo repositories.SnapshotRepository,
	cache caching.CacheService,
	backup BackupService,
	cfg SyncConfig,
	log zerolog.Logger,
) SyncService {
	if cfg.CurrentPrefix == "" {
		cfg.CurrentPrefix = "inventario"
	}
	if cfg.HistoryPrefix == "" {
		cfg.HistoryPrefix = "historico"
	}
	if cfg.PanelViewTTL <= 0 {
		cfg.PanelViewTTL = 5 * time.Minute
	}
	return &syncService{
		current:     make(map[string][]models.ReagentRecord),
		history:     make(map[string][]models.HistoricalEntry),
		grouping:    grouping,
		stock:       stock,
		currentRepo: currentRepo,
		historyRepo: historyRepo,
		cache:       cache,
		backup:      backup,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

func (s *syncService) LoadStores(ctx context.Context) (currentErr, historyErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var currentDoc models.SnapshotDocument
	ref, err := s.currentRepo.LoadLatest(ctx, s.cfg.CurrentExclude, &currentDoc)
	switch {
	case err != nil:
		currentErr = fmt.Errorf("load current store: %w", err)
	case ref == nil:
		s.log.Info().Msg("current store is empty, starting with no panels")
	default:
		s.current = currentDoc.Panels
		if s.current == nil {
			s.current = make(map[string][]models.ReagentRecord)
		}
		s.log.Info().Str("snapshot", ref.Name).Int("panels", len(s.current)).Msg("current store loaded")
	}

	var historyDoc models.HistoryDocument
	href, err := s.historyRepo.LoadLatest(ctx, s.cfg.HistoryExclude, &historyDoc)
	switch {
	case err != nil:
		historyErr = fmt.Errorf("load historical store: %w", err)
	case href == nil:
		s.log.Info().Msg("historical store is empty")
	default:
		s.history = historyDoc.Panels
		if s.history == nil {
			s.history = make(map[string][]models.HistoricalEntry)
		}
		s.log.Info().Str("snapshot", href.Name).Msg("historical store loaded")
	}

	// A reload makes every cached panel view stale.
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation on reload failed")
	}
	return currentErr, historyErr
}

func (s *syncService) Panels(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	panels := make([]string, 0, len(s.current))
	for panel := range s.current {
		panels = append(panels, panel)
	}
	sort.Strings(panels)
	return panels
}

func (s *syncService) PanelRecords(ctx context.Context, panel string) ([]models.ReagentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, ok := s.current[panel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPanelNotFound, panel)
	}
	return append([]models.ReagentRecord(nil), records...), nil
}

func (s *syncService) AnnotatedPanel(ctx context.Context, panel string) ([]models.AnnotatedRecord, error) {
	if view, err := s.cache.GetPanelView(ctx, panel); err == nil && view != nil {
		return view, nil
	}
	records, err := s.PanelRecords(ctx, panel)
	if err != nil {
		return nil, err
	}
	view := s.grouping.Annotate(records, panel)
	if err := s.cache.SetPanelView(ctx, panel, view, s.cfg.PanelViewTTL); err != nil {
		s.log.Warn().Err(err).Str("panel", panel).Msg("panel view cache write failed")
	}
	return view, nil
}

func (s *syncService) ExportPanel(ctx context.Context, panel string) ([]models.Row, error) {
	records, err := s.PanelRecords(ctx, panel)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Row, len(records))
	for i, rec := range records {
		rows[i] = models.RowFromRecord(rec)
	}
	return rows, nil
}

func (s *syncService) ImportPanel(ctx context.Context, panel string, rows []models.Row) (int, StoreOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.ReagentRecord, len(rows))
	for i, row := range rows {
		records[i] = models.RecordFromRow(row)
	}
	s.current[panel] = records
	outcome := s.saveCurrent(ctx)
	s.invalidatePanel(ctx, panel)
	return len(records), outcome, nil
}

func (s *syncService) ApplyEdit(ctx context.Context, panel string, index int, changes models.FieldChanges, selection []int) (*EditOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.current[panel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPanelNotFound, panel)
	}
	applied, err := s.stock.ApplyEdit(records, index, changes, selection)
	if err != nil {
		return nil, err
	}
	return s.finishMutation(ctx, panel, applied, applied.Record), nil
}

func (s *syncService) Consume(ctx context.Context, panel string, index, quantity int) (*EditOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.current[panel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPanelNotFound, panel)
	}
	if index < 0 || index >= len(records) {
		return nil, fmt.Errorf("%w: %d (panel has %d records)", ErrIndexOutOfRange, index, len(records))
	}
	prev := records[index]
	if err := s.stock.Consume(&records[index], quantity); err != nil {
		return nil, err
	}
	// The ledger keeps the lot identity that a depletion reset clears from
	// the live record, at the consumed stock level.
	entry := prev
	entry.Stock = records[index].Stock
	applied := &ApplyResult{Record: records[index], UpdatedIndexes: []int{index}}
	return s.finishMutation(ctx, panel, applied, entry), nil
}

// finishMutation historizes entry and runs both save phases. Only the
// directly edited record enters the ledger; cascade siblings are reflected
// in the current store alone. Caller holds the mutex.
func (s *syncService) finishMutation(ctx context.Context, panel string, applied *ApplyResult, entry models.ReagentRecord) *EditOutcome {
	s.history[panel] = append(s.history[panel], models.HistoricalEntry{
		ReagentRecord: entry,
		RecordedAt:    s.now(),
	})

	outcome := &EditOutcome{
		EditID: uuid.New(),
		Apply:  applied,
		Save: SaveOutcome{
			Current: s.saveCurrent(ctx),
			History: s.saveHistory(ctx),
		},
	}
	s.invalidatePanel(ctx, panel)
	return outcome
}

func (s *syncService) saveCurrent(ctx context.Context) StoreOutcome {
	doc := models.SnapshotDocument{SavedAt: s.now(), Panels: s.current}
	ref, err := s.currentRepo.Create(ctx, s.cfg.CurrentPrefix, doc)
	if err != nil {
		s.log.Error().Err(err).Msg("current store save failed")
		return StoreOutcome{Error: err.Error()}
	}
	s.uploadBackup(ctx, StoreCurrent, ref, doc)
	return StoreOutcome{Saved: true, Ref: &ref}
}

func (s *syncService) saveHistory(ctx context.Context) StoreOutcome {
	doc := models.HistoryDocument{SavedAt: s.now(), Panels: s.history}
	ref, err := s.historyRepo.Create(ctx, s.cfg.HistoryPrefix, doc)
	if err != nil {
		s.log.Error().Err(err).Msg("historical store save failed")
		return StoreOutcome{Error: err.Error()}
	}
	s.uploadBackup(ctx, StoreHistory, ref, doc)
	return StoreOutcome{Saved: true, Ref: &ref}
}

func (s *syncService) uploadBackup(ctx context.Context, store string, ref models.SnapshotRef, payload any) {
	if s.backup == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("backup encode failed")
		return
	}
	if err := s.backup.UploadSnapshot(ctx, store, ref, bytes.NewReader(data), int64(len(data))); err != nil {
		s.log.Warn().Err(err).Str("snapshot", ref.Name).Msg("backup upload failed")
	}
}

func (s *syncService) invalidatePanel(ctx context.Context, panel string) {
	if err := s.cache.DeletePanelView(ctx, panel); err != nil {
		s.log.Warn().Err(err).Str("panel", panel).Msg("panel cache invalidation failed")
	}
}

func (s *syncService) History(ctx context.Context, panel string) ([]models.HistoricalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.history[panel]
	if !ok {
		if _, known := s.current[panel]; !known {
			return nil, fmt.Errorf("%w: %s", ErrPanelNotFound, panel)
		}
		return nil, nil
	}
	return append([]models.HistoricalEntry(nil), entries...), nil
}

func (s *syncService) ReconcileDelete(ctx context.Context, panel, productName, lotNumberTyped, confirm string) (int, SaveOutcome, error) {
	if confirm != ConfirmDelete {
		return 0, SaveOutcome{}, ErrBadConfirmation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.history[panel]
	if !ok {
		return 0, SaveOutcome{}, fmt.Errorf("%w: %s", ErrPanelNotFound, panel)
	}
	kept := entries[:0:0]
	removed := 0
	for _, entry := range entries {
		if entry.ProductName == productName && entry.LotNumber == lotNumberTyped {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed == 0 {
		return 0, SaveOutcome{}, nil
	}
	s.history[panel] = kept
	return removed, SaveOutcome{History: s.saveHistory(ctx)}, nil
}

func (s *syncService) CreateSnapshot(ctx context.Context, store string) (models.SnapshotRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch store {
	case StoreCurrent:
		outcome := s.saveCurrent(ctx)
		if outcome.Error != "" {
			return models.SnapshotRef{}, errors.New(outcome.Error)
		}
		return *outcome.Ref, nil
	case StoreHistory:
		outcome := s.saveHistory(ctx)
		if outcome.Error != "" {
			return models.SnapshotRef{}, errors.New(outcome.Error)
		}
		return *outcome.Ref, nil
	default:
		return models.SnapshotRef{}, fmt.Errorf("%w: %s", ErrUnknownStore, store)
	}
}

func (s *syncService) repoFor(store string) (repositories.SnapshotRepository, error) {
	switch store {
	case StoreCurrent:
		return s.currentRepo, nil
	case StoreHistory:
		return s.historyRepo, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, store)
	}
}

func (s *syncService) ListBuckets(ctx context.Context, store string) ([]string, error) {
	repo, err := s.repoFor(store)
	if err != nil {
		return nil, err
	}
	return repo.Buckets(ctx)
}

func (s *syncService) ListSnapshots(ctx context.Context, store, bucket string) ([]models.SnapshotRef, error) {
	repo, err := s.repoFor(store)
	if err != nil {
		return nil, err
	}
	if bucket == "" {
		return repo.ListAll(ctx)
	}
	return repo.List(ctx, bucket)
}

func (s *syncService) DeleteSnapshot(ctx context.Context, store, bucket, name, confirm string) error {
	if confirm != ConfirmDelete {
		return ErrBadConfirmation
	}
	repo, err := s.repoFor(store)
	if err != nil {
		return err
	}
	created, ok := models.ParseSnapshotName(name)
	if !ok {
		return fmt.Errorf("%w: %s", repositories.ErrSnapshotNotFound, name)
	}
	return repo.Delete(ctx, models.SnapshotRef{Name: name, Bucket: bucket, CreatedAt: created})
}

func (s *syncService) DeleteBucket(ctx context.Context, store, bucket, confirm string) error {
	if confirm != ConfirmDeleteAll {
		return ErrBadConfirmation
	}
	repo, err := s.repoFor(store)
	if err != nil {
		return err
	}
	return repo.DeleteAll(ctx, bucket)
}
