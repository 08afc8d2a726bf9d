package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cost-sync/core/odoo"
	"cost-sync/core/reconcile"
	"cost-sync/core/server"
	"cost-sync/core/session"
	"cost-sync/core/storage"
	"cost-sync/feature/sync/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level sentinel errors. Anything else a method returns originates
// at the Odoo boundary and carries an odoo.Error kind.
var (
	// ErrInvalidLogin means the app credential pair did not match.
	ErrInvalidLogin = errors.New("invalid username or password")
	// ErrNoCompanies means the Odoo database has no companies at all.
	ErrNoCompanies = errors.New("no companies found in Odoo")
	// ErrUnknownCompany means the requested target company id does not exist.
	ErrUnknownCompany = errors.New("unknown company id")
	// ErrNoSelection means the operator has not selected any products.
	ErrNoSelection = errors.New("no products selected")
	// ErrNoReferences means execute was requested before the reference fetch.
	ErrNoReferences = errors.New("reference costs have not been fetched")
	// ErrNoResults means no run has been executed in this session yet.
	ErrNoResults = errors.New("no results to report")
	// ErrUnknownAction means the selection action is not recognized.
	ErrUnknownAction = errors.New("unknown selection action")
	// ErrHistoryDisabled means no history database is configured.
	ErrHistoryDisabled = errors.New("run history is not configured")
	// ErrArchiveDisabled means no report storage is configured.
	ErrArchiveDisabled = errors.New("report archive is not configured")
)

// defaultPageSize matches the product listing page size of the web UI.
const defaultPageSize = 20

// Service orchestrates the cost sync workflow.
type Service struct {
	serverCfg server.Config
	odooCfg   odoo.Config
	sessions  *session.Store
	history   *History
	archive   *storage.Archive
	logger    *zap.Logger

	// connect is swappable so tests can inject a mock directory.
	connect func(odoo.Config) (odoo.Client, error)
}

// NewService creates a new sync service. db and archive may be nil, which
// disables run history and report archiving respectively.
func NewService(serverCfg server.Config, odooCfg odoo.Config, logger *zap.Logger, db *gorm.DB, archive *storage.Archive) *Service {
	ttl := time.Duration(serverCfg.SessionTTLMinutes) * time.Minute

	s := &Service{
		serverCfg: serverCfg,
		odooCfg:   odooCfg,
		sessions:  session.NewStore(ttl),
		archive:   archive,
		logger:    logger,
		connect:   odoo.Connect,
	}
	if db != nil {
		s.history = NewHistory(db)
	}
	return s
}

// Sessions exposes the session store for the auth middleware.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Login authenticates the operator, connects to Odoo, validates the
// configured source company, and issues a session. The default target is
// the first company that is not the source.
func (s *Service) Login(ctx context.Context, username, password string) (*session.Session, error) {
	if !s.serverCfg.CheckLogin(username, password) {
		return nil, ErrInvalidLogin
	}

	client, err := s.connect(s.odooCfg)
	if err != nil {
		return nil, err
	}

	companies, err := client.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrNoCompanies
	}

	var source *odoo.Company
	for i := range companies {
		if companies[i].Name == s.odooCfg.SourceCompany {
			source = &companies[i]
			break
		}
	}
	if source == nil {
		return nil, &odoo.Error{Kind: odoo.KindConfig, Op: "validate source company",
			Err: fmt.Errorf("source company %q not found in Odoo", s.odooCfg.SourceCompany)}
	}

	// Default target: the first company that is not the source. Falls back
	// to the source itself in a single-company database.
	target := *source
	for _, c := range companies {
		if c.ID != source.ID {
			target = c
			break
		}
	}

	sess := s.sessions.Create(session.Login{
		Operator:   username,
		Odoo:       client,
		Companies:  companies,
		SourceID:   source.ID,
		SourceName: source.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
	})

	s.logger.Info("Operator logged in",
		zap.String("operator", username),
		zap.String("source_company", source.Name),
		zap.String("target_company", target.Name),
	)
	return sess, nil
}

// Logout destroys the session.
func (s *Service) Logout(sess *session.Session) {
	s.sessions.Delete(sess.Token)
	s.logger.Info("Operator logged out", zap.String("operator", sess.Operator))
}

// SetTarget switches the target company and clears all derived state.
func (s *Service) SetTarget(sess *session.Session, companyID int64) error {
	for _, c := range sess.Companies() {
		if c.ID == companyID {
			sess.SetTarget(c.ID, c.Name)
			return nil
		}
	}
	return ErrUnknownCompany
}

// FetchProducts loads the zero-cost products of the target company into the
// session. On failure the previous session state is left untouched.
func (s *Service) FetchProducts(ctx context.Context, sess *session.Session) (models.FetchResponse, error) {
	targetID, targetName := sess.Target()

	records, truncated, err := sess.Odoo.FindZeroCostProducts(ctx, targetID)
	if err != nil {
		return models.FetchResponse{}, err
	}

	sess.SetProducts(records, truncated)

	s.logger.Info("Fetched zero-cost products",
		zap.String("target_company", targetName),
		zap.Int("count", len(records)),
		zap.Bool("truncated", truncated),
	)
	return models.FetchResponse{Count: len(records), Truncated: truncated}, nil
}

// ListProducts returns one page of the filtered product listing.
func (s *Service) ListProducts(sess *session.Session, query string, page, pageSize int) models.ProductPage {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	all, truncated := sess.Products()
	matched := sess.FilterProducts(query)

	totalPages := (len(matched) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	views := make([]models.ProductView, 0, end-start)
	for _, p := range matched[start:end] {
		views = append(views, models.ProductView{
			ProductRecord: p,
			Selected:      sess.IsSelected(p.ID),
		})
	}

	return models.ProductPage{
		Products:      views,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		TotalMatched:  len(matched),
		TotalFetched:  len(all),
		SelectedCount: sess.SelectionCount(),
		Truncated:     truncated,
	}
}

// UpdateSelection mutates the selection set. The bulk actions honor the
// free-text filter so "select all" means "select all currently visible".
func (s *Service) UpdateSelection(sess *session.Session, req models.SelectionRequest) (models.SelectionResponse, error) {
	switch req.Action {
	case models.SelectionSelect:
		sess.Select(req.IDs...)
	case models.SelectionDeselect:
		sess.Deselect(req.IDs...)
	case models.SelectionSelectAll:
		sess.Select(filteredIDs(sess, req.Query)...)
	case models.SelectionDeselectAll:
		sess.Deselect(filteredIDs(sess, req.Query)...)
	case models.SelectionClear:
		sess.ClearSelection()
	default:
		return models.SelectionResponse{}, ErrUnknownAction
	}

	return models.SelectionResponse{SelectedCount: sess.SelectionCount()}, nil
}

func filteredIDs(sess *session.Session, query string) []int64 {
	matched := sess.FilterProducts(query)
	ids := make([]int64, 0, len(matched))
	for _, p := range matched {
		ids = append(ids, p.ID)
	}
	return ids
}

// FetchReferences fetches reference products from the source company for
// the current selection and builds the cost lookup.
func (s *Service) FetchReferences(ctx context.Context, sess *session.Session) (models.ReferencesResponse, error) {
	selected := sess.SelectedProducts()
	if len(selected) == 0 {
		return models.ReferencesResponse{}, ErrNoSelection
	}

	skus := make([]string, 0, len(selected))
	names := make([]string, 0, len(selected))
	seenSKU := make(map[string]struct{})
	seenName := make(map[string]struct{})
	for _, p := range selected {
		if p.SKU != "" {
			if _, ok := seenSKU[p.SKU]; !ok {
				seenSKU[p.SKU] = struct{}{}
				skus = append(skus, p.SKU)
			}
		}
		if _, ok := seenName[p.Name]; !ok {
			seenName[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}

	sourceID, sourceName := sess.Source()
	refs, err := sess.Odoo.FindReferenceProducts(ctx, sourceID, skus, names)
	if err != nil {
		return models.ReferencesResponse{}, err
	}

	lookup := reconcile.BuildCostLookup(refs)
	sess.SetLookup(lookup)

	matches := 0
	for _, p := range selected {
		if lookup.Resolve(p) > 0 {
			matches++
		}
	}

	s.logger.Info("Fetched reference costs",
		zap.String("source_company", sourceName),
		zap.Int("references", len(refs)),
		zap.Int("matches", matches),
		zap.Int("selected", len(selected)),
	)

	return models.ReferencesResponse{
		Matches:    matches,
		Selected:   len(selected),
		References: len(refs),
	}, nil
}

// Execute runs the bulk cost update over the current selection. Per-item
// write failures are captured in the ledger and never abort the batch.
func (s *Service) Execute(ctx context.Context, sess *session.Session) (models.ExecuteResponse, error) {
	selected := sess.SelectedProducts()
	if len(selected) == 0 {
		return models.ExecuteResponse{}, ErrNoSelection
	}

	lookup := sess.Lookup()
	if lookup == nil {
		return models.ExecuteResponse{}, ErrNoReferences
	}

	targetID, targetName := sess.Target()
	sourceID, sourceName := sess.Source()

	results, summary := reconcile.ApplyCosts(selected, lookup, func(id int64, cost float64) error {
		return sess.Odoo.WriteCost(ctx, targetID, id, cost)
	})
	sess.SetResults(results, summary)

	s.logger.Info("Executed cost updates",
		zap.String("target_company", targetName),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("total", summary.Total),
	)

	// History and archiving are best-effort: a completed run is reported to
	// the operator even when a backend is down.
	if s.history != nil {
		run := models.RunFromLedger(sess.Operator, sourceID, sourceName, targetID, targetName, results, summary)
		if err := s.history.Record(ctx, run); err != nil {
			s.logger.Warn("Failed to record run history", zap.Error(err))
		}
	}
	if s.archive != nil {
		if err := s.archiveReport(ctx, sess); err != nil {
			s.logger.Warn("Failed to archive run report", zap.Error(err))
		}
	}

	return models.ExecuteResponse{Summary: summary, Results: results}, nil
}

func (s *Service) archiveReport(ctx context.Context, sess *session.Session) error {
	data, name, err := s.Report(sess)
	if err != nil {
		return err
	}
	return s.archive.Save(ctx, name, data)
}

// Report renders the last run ledger as a timestamped CSV download.
func (s *Service) Report(sess *session.Session) ([]byte, string, error) {
	results, _, lastRun := sess.Results()
	if len(results) == 0 {
		return nil, "", ErrNoResults
	}

	var buf bytes.Buffer
	if err := reconcile.WriteCSV(&buf, results); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), reconcile.ReportFilename(lastRun), nil
}

// History returns the most recent executed runs.
func (s *Service) History(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, limit)
}

// ArchivedReports lists the reports retained in object storage.
func (s *Service) ArchivedReports(ctx context.Context) ([]storage.ReportInfo, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx)
}

// OpenArchivedReport streams one archived report by name.
func (s *Service) OpenArchivedReport(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Open(ctx, name)
}
