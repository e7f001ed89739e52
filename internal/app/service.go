// Package app wires the mappers, the reconciliation engine and the storage
// tiers into the operations the CLI exposes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"offerbridge/internal/config"
	"offerbridge/internal/logging"
	"offerbridge/internal/mapper"
	"offerbridge/internal/offer"
	"offerbridge/internal/parser"
	"offerbridge/internal/partition"
	"offerbridge/internal/phone"
	"offerbridge/internal/reconcile"
	"offerbridge/internal/search"
	"offerbridge/internal/store"
	"offerbridge/internal/util"
	"offerbridge/internal/vault"
)

// Deps are the collaborators a Service is built from. Search may be nil.
type Deps struct {
	Index  store.IndexStore
	Vault  vault.Store
	Search *search.Service
}

type Service struct {
	cfg       config.Config
	index     store.IndexStore
	vault     vault.Store
	search    *search.Service
	repo      *OfferRepository
	engine    *reconcile.Engine
	locker    *reconcile.KeyLocker
	primary   *mapper.Primary
	secondary *mapper.Secondary
	now       func() time.Time
}

func NewService(cfg config.Config, deps Deps) *Service {
	var indexer Indexer
	if deps.Search != nil {
		indexer = deps.Search
	}
	repo := NewOfferRepository(deps.Index, deps.Vault, partition.New(cfg.PhoneHashSalt), indexer)
	return &Service{
		cfg:    cfg,
		index:  deps.Index,
		vault:  deps.Vault,
		search: deps.Search,
		repo:   repo,
		engine: reconcile.NewEngine(repo),
		locker: reconcile.NewKeyLocker(),
		primary: mapper.NewPrimary(mapper.PrimaryOptions{
			ProjectID: cfg.PrimaryProjectID,
		}),
		secondary: mapper.NewSecondary(mapper.SecondaryOptions{
			PhoneHashSalt: cfg.PhoneHashSalt,
			IncludeFusion: cfg.IncludeFusion,
		}),
		now: time.Now,
	}
}

// RunOptions tune one ingest or import call.
type RunOptions struct {
	Workers         int
	ContinueOnError bool
	Observer        reconcile.Observer
}

func (s *Service) runOptions() RunOptions {
	return RunOptions{Workers: s.cfg.ImportWorkers, ContinueOnError: s.cfg.ImportContinueOnError}
}

// IngestPrimary maps live CRM rows and applies them. Items share the
// service's key locker, so a concurrent import cannot interleave with them
// on the same key.
func (s *Service) IngestPrimary(ctx context.Context, rows []mapper.Row, opts *RunOptions) (reconcile.Stats, error) {
	ctx = logging.WithRun(ctx, util.NewID("run"), offer.SourcePrimary)
	items := make([]reconcile.Item, len(rows))
	for i, row := range rows {
		items[i] = toItem(i+1, s.primary.Map(row))
	}
	return s.run(ctx, items, opts)
}

// ImportResult reports one secondary import.
type ImportResult struct {
	Encoding string                `json:"encoding"`
	Rows     int                   `json:"rows"`
	Warnings []parser.ParseWarning `json:"warnings,omitempty"`
	Stats    reconcile.Stats       `json:"stats"`
}

// ImportSecondary parses a weekly report and applies every row. An empty
// reportDate falls back to the configured REPORT_DATE, then to today (UTC).
func (s *Service) ImportSecondary(ctx context.Context, r io.Reader, reportDate string, opts *RunOptions) (ImportResult, error) {
	ctx = logging.WithRun(ctx, util.NewID("run"), offer.SourceSecondary)
	log := logging.FromContext(ctx)

	parsed, err := parser.ReadAll(r, parser.Options{})
	if err != nil {
		return ImportResult{}, domainError(CodeBadInput, err.Error(), nil)
	}
	for _, w := range parsed.Warnings {
		log.Warn().Int("line", w.Line).Msg(w.Message)
	}

	if strings.TrimSpace(reportDate) == "" {
		reportDate = s.cfg.ReportDate
	}
	if strings.TrimSpace(reportDate) == "" {
		reportDate = s.now().UTC().Format(time.DateOnly)
	}
	items := make([]reconcile.Item, len(parsed.Rows))
	for i, row := range parsed.Rows {
		items[i] = toItem(row.Line, s.secondary.Map(rowValues(row), reportDate))
	}

	stats, err := s.run(ctx, items, opts)
	res := ImportResult{
		Encoding: parsed.Encoding,
		Rows:     len(parsed.Rows),
		Warnings: parsed.Warnings,
		Stats:    stats,
	}
	return res, err
}

func (s *Service) run(ctx context.Context, items []reconcile.Item, opts *RunOptions) (reconcile.Stats, error) {
	o := s.runOptions()
	if opts != nil {
		o = *opts
	}
	batch := reconcile.NewBatch(s.engine, reconcile.Options{
		Workers:         o.Workers,
		ContinueOnError: o.ContinueOnError,
		Locker:          s.locker,
		Observer:        o.Observer,
	})
	return batch.Run(ctx, items)
}

func toItem(line int, res mapper.Result) reconcile.Item {
	if res.Skip {
		return reconcile.Item{Line: line, SkipReason: res.Reason}
	}
	return reconcile.Item{Line: line, Record: res.Mapped}
}

func rowValues(row parser.Row) mapper.Row {
	out := make(mapper.Row, len(row.Values))
	for k, v := range row.Values {
		out[k] = v
	}
	return out
}

// OfferView is what operators see for one key.
type OfferView struct {
	Index store.IndexEntry `json:"index"`
	Vault offer.Record     `json:"vault,omitempty"`
}

// Show returns the index entry for key and, when withVault is set, the full
// vault record.
func (s *Service) Show(ctx context.Context, key offer.Key, withVault bool) (OfferView, error) {
	if !key.Valid() {
		return OfferView{}, domainError(CodeInvalidKey, "project and unit are required", key)
	}
	entry, err := s.index.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return OfferView{}, domainError(CodeNotFound, "no offer for "+key.String(), key)
	}
	if err != nil {
		return OfferView{}, fmt.Errorf("get index entry: %w", err)
	}
	view := OfferView{Index: entry}
	if !withVault {
		return view, nil
	}
	rec, err := s.vault.Get(ctx, entry.VaultID)
	if errors.Is(err, vault.ErrNotFound) {
		return view, fmt.Errorf("%w: vault blob %s missing for %s", ErrMalformedState, entry.VaultID, key)
	}
	if err != nil {
		return view, fmt.Errorf("get vault blob: %w", err)
	}
	view.Vault = rec
	return view, nil
}

// LinkByPhone finds every offer whose buyer phone matches raw, comparing
// salted hashes only.
func (s *Service) LinkByPhone(ctx context.Context, raw string) ([]store.IndexEntry, error) {
	m, ok := phone.Derive(raw, s.cfg.PhoneHashSalt)
	if !ok {
		return nil, domainError(CodeBadInput, "phone number has no digits", raw)
	}
	entries, err := s.index.FindByPhoneHash(ctx, m.Hash)
	if err != nil {
		return nil, fmt.Errorf("find by phone hash: %w", err)
	}
	return entries, nil
}

// Search queries the search projection, falling back to an index scan.
func (s *Service) Search(ctx context.Context, q search.Query) search.Response {
	if s.search == nil {
		return search.NewService(nil, search.NewStoreScan(s.index)).Search(ctx, q)
	}
	return s.search.Search(ctx, q)
}

// Reindex pushes one project's index entries to Meilisearch.
func (s *Service) Reindex(ctx context.Context, projectID string) (int, error) {
	if s.search == nil {
		return 0, nil
	}
	n, err := s.search.Reindex(ctx, s.index, projectID)
	if err != nil {
		return 0, fmt.Errorf("reindex %s: %w", projectID, err)
	}
	return n, nil
}

// Close waits for background search indexing and releases the index store.
func (s *Service) Close() error {
	if s.search != nil {
		s.search.Close()
	}
	return s.index.Close()
}
