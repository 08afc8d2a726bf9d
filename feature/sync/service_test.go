package sync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cost-sync/core/odoo"
	"cost-sync/core/odoo/mocks"
	"cost-sync/core/reconcile"
	"cost-sync/core/server"
	"cost-sync/core/session"
	"cost-sync/core/storage"
	storagemocks "cost-sync/core/storage/mocks"
	"cost-sync/feature/sync/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func testServerConfig() server.Config {
	return server.Config{
		AppUsername:       "admin",
		AppPassword:       "secret",
		SessionTTLMinutes: 60,
	}
}

func newTestService(client odoo.Client) *Service {
	svc := NewService(testServerConfig(), odoo.Config{SourceCompany: "Main Company"}, zap.NewNop(), nil, nil)
	svc.connect = func(odoo.Config) (odoo.Client, error) {
		return client, nil
	}
	return svc
}

func testCompanies() []odoo.Company {
	return []odoo.Company{
		{ID: 1, Name: "Main Company"},
		{ID: 2, Name: "Branch East"},
		{ID: 3, Name: "Branch West"},
	}
}

func loggedInSession(t *testing.T, svc *Service, client *mocks.Client) *session.Session {
	t.Helper()
	client.On("ListCompanies", mock.Anything).Return(testCompanies(), nil).Once()

	sess, err := svc.Login(context.Background(), "admin", "secret")
	assert.NoError(t, err)
	return sess
}

func TestLoginSuccess(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)

	sess := loggedInSession(t, svc, client)

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "admin", sess.Operator)

	sourceID, sourceName := sess.Source()
	assert.Equal(t, int64(1), sourceID)
	assert.Equal(t, "Main Company", sourceName)

	// The default target is the first company that is not the source.
	targetID, targetName := sess.Target()
	assert.Equal(t, int64(2), targetID)
	assert.Equal(t, "Branch East", targetName)

	resolved, ok := svc.Sessions().Get(sess.Token)
	assert.True(t, ok)
	assert.Same(t, sess, resolved)
	client.AssertExpectations(t)
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)

	_, err := svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidLogin)
	client.AssertNotCalled(t, "ListCompanies", mock.Anything)
}

func TestLoginSourceCompanyMissing(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	client.On("ListCompanies", mock.Anything).Return([]odoo.Company{
		{ID: 2, Name: "Branch East"},
	}, nil).Once()

	_, err := svc.Login(context.Background(), "admin", "secret")
	assert.Error(t, err)
	assert.Equal(t, odoo.KindConfig, odoo.KindOf(err))
	assert.Contains(t, err.Error(), "Main Company")
}

func TestLoginSingleCompany(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	client.On("ListCompanies", mock.Anything).Return([]odoo.Company{
		{ID: 1, Name: "Main Company"},
	}, nil).Once()

	sess, err := svc.Login(context.Background(), "admin", "secret")
	assert.NoError(t, err)

	targetID, _ := sess.Target()
	assert.Equal(t, int64(1), targetID)
}

func TestLoginConnectFailure(t *testing.T) {
	svc := newTestService(nil)
	svc.connect = func(odoo.Config) (odoo.Client, error) {
		return nil, &odoo.Error{Kind: odoo.KindAuth, Op: "authenticate", Err: errors.New("bad credentials")}
	}

	_, err := svc.Login(context.Background(), "admin", "secret")
	assert.Equal(t, odoo.KindAuth, odoo.KindOf(err))
	assert.Equal(t, 0, svc.Sessions().Len())
}

func TestLogout(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	svc.Logout(sess)

	_, ok := svc.Sessions().Get(sess.Token)
	assert.False(t, ok)
}

func TestSetTarget(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	err := svc.SetTarget(sess, 3)
	assert.NoError(t, err)

	targetID, targetName := sess.Target()
	assert.Equal(t, int64(3), targetID)
	assert.Equal(t, "Branch West", targetName)

	err = svc.SetTarget(sess, 99)
	assert.ErrorIs(t, err, ErrUnknownCompany)
}

func TestFetchProducts(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	records := []reconcile.ProductRecord{
		{ID: 10, SKU: "SKU-1", Name: "Widget"},
		{ID: 11, Name: "Gadget"},
	}
	client.On("FindZeroCostProducts", mock.Anything, int64(2)).Return(records, true, nil).Once()

	resp, err := svc.FetchProducts(context.Background(), sess)
	assert.NoError(t, err)
	assert.Equal(t, models.FetchResponse{Count: 2, Truncated: true}, resp)

	products, truncated := sess.Products()
	assert.Len(t, products, 2)
	assert.True(t, truncated)
	client.AssertExpectations(t)
}

func TestFetchProductsFailureKeepsState(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	sess.SetProducts([]reconcile.ProductRecord{{ID: 10, Name: "Widget"}}, false)
	sess.Select(10)

	client.On("FindZeroCostProducts", mock.Anything, int64(2)).
		Return(nil, false, &odoo.Error{Kind: odoo.KindRead, Op: "search", Err: errors.New("timeout")}).Once()

	_, err := svc.FetchProducts(context.Background(), sess)
	assert.Equal(t, odoo.KindRead, odoo.KindOf(err))

	products, _ := sess.Products()
	assert.Len(t, products, 1)
	assert.Equal(t, 1, sess.SelectionCount())
}

func TestListProducts(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	products := make([]reconcile.ProductRecord, 0, 25)
	for i := 0; i < 25; i++ {
		name := "Widget"
		if i%2 == 1 {
			name = "Gadget"
		}
		products = append(products, reconcile.ProductRecord{ID: int64(i + 1), Name: name})
	}
	sess.SetProducts(products, false)
	sess.Select(1, 2)

	page := svc.ListProducts(sess, "", 1, 20)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 25, page.TotalMatched)
	assert.Equal(t, 25, page.TotalFetched)
	assert.Equal(t, 2, page.SelectedCount)
	assert.Len(t, page.Products, 20)
	assert.True(t, page.Products[0].Selected)
	assert.False(t, page.Products[2].Selected)

	page = svc.ListProducts(sess, "", 2, 20)
	assert.Len(t, page.Products, 5)

	// A page past the end clamps to the last page.
	page = svc.ListProducts(sess, "", 9, 20)
	assert.Equal(t, 2, page.Page)

	page = svc.ListProducts(sess, "gadget", 1, 20)
	assert.Equal(t, 12, page.TotalMatched)
	for _, p := range page.Products {
		assert.True(t, strings.Contains(p.Name, "Gadget"))
	}
}

func TestUpdateSelection(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	sess.SetProducts([]reconcile.ProductRecord{
		{ID: 1, SKU: "W-1", Name: "Widget"},
		{ID: 2, SKU: "W-2", Name: "Widget Pro"},
		{ID: 3, SKU: "G-1", Name: "Gadget"},
	}, false)

	resp, err := svc.UpdateSelection(sess, models.SelectionRequest{Action: models.SelectionSelect, IDs: []int64{1, 3}})
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.SelectedCount)

	resp, err = svc.UpdateSelection(sess, models.SelectionRequest{Action: models.SelectionDeselect, IDs: []int64{3}})
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.SelectedCount)

	// select_all honors the free-text filter.
	resp, err = svc.UpdateSelection(sess, models.SelectionRequest{Action: models.SelectionSelectAll, Query: "widget"})
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.SelectedCount)
	assert.False(t, sess.IsSelected(3))

	resp, err = svc.UpdateSelection(sess, models.SelectionRequest{Action: models.SelectionClear})
	assert.NoError(t, err)
	assert.Equal(t, 0, resp.SelectedCount)

	_, err = svc.UpdateSelection(sess, models.SelectionRequest{Action: "invert"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFetchReferences(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	sess.SetProducts([]reconcile.ProductRecord{
		{ID: 1, SKU: "W-1", Name: "Widget"},
		{ID: 2, SKU: "W-1", Name: "Widget Clone"},
		{ID: 3, Name: "Gadget"},
	}, false)
	sess.Select(1, 2, 3)

	refs := []reconcile.ProductRecord{
		{ID: 100, SKU: "W-1", Name: "Widget", Cost: 12.5},
	}
	client.On("FindReferenceProducts", mock.Anything, int64(1), []string{"W-1"}, []string{"Widget", "Widget Clone", "Gadget"}).
		Return(refs, nil).Once()

	resp, err := svc.FetchReferences(context.Background(), sess)
	assert.NoError(t, err)
	assert.Equal(t, 3, resp.Selected)
	assert.Equal(t, 1, resp.References)
	// Both W-1 products resolve through the shared SKU, Gadget has no match.
	assert.Equal(t, 2, resp.Matches)
	assert.NotNil(t, sess.Lookup())
	client.AssertExpectations(t)
}

func TestFetchReferencesWithoutSelection(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	_, err := svc.FetchReferences(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNoSelection)
	client.AssertNotCalled(t, "FindReferenceProducts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	sess.SetProducts([]reconcile.ProductRecord{
		{ID: 1, SKU: "W-1", Name: "Widget"},
		{ID: 2, Name: "Gadget"},
		{ID: 3, SKU: "F-1", Name: "Flange"},
	}, false)
	sess.Select(1, 2, 3)
	sess.SetLookup(reconcile.CostLookup{"W-1": 12.5, "Flange": 7})

	client.On("WriteCost", mock.Anything, int64(2), int64(1), 12.5).Return(nil).Once()
	client.On("WriteCost", mock.Anything, int64(2), int64(3), float64(7)).
		Return(&odoo.Error{Kind: odoo.KindWrite, Op: "write", Err: errors.New("access denied")}).Once()

	resp, err := svc.Execute(context.Background(), sess)
	assert.NoError(t, err)
	assert.Equal(t, reconcile.Summary{Updated: 1, Skipped: 1, Failed: 1, Total: 3}, resp.Summary)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, reconcile.OutcomeUpdated, resp.Results[0].Outcome)
	assert.Equal(t, reconcile.OutcomeSkipped, resp.Results[1].Outcome)
	assert.Equal(t, reconcile.OutcomeFailed, resp.Results[2].Outcome)
	client.AssertExpectations(t)
}

func TestExecutePreconditions(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	_, err := svc.Execute(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNoSelection)

	sess.SetProducts([]reconcile.ProductRecord{{ID: 1, Name: "Widget"}}, false)
	sess.Select(1)

	_, err = svc.Execute(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNoReferences)
}

func TestReport(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)
	sess := loggedInSession(t, svc, client)

	_, _, err := svc.Report(sess)
	assert.ErrorIs(t, err, ErrNoResults)

	sess.SetResults([]reconcile.Result{
		{ProductName: "Widget", SKU: "W-1", NewCost: 12.5, Outcome: reconcile.OutcomeUpdated},
	}, reconcile.Summary{Updated: 1, Total: 1})

	data, name, err := svc.Report(sess)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "cost_sync_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.Contains(t, string(data), "Widget")
	assert.Contains(t, string(data), "Updated")
}

func TestExecuteArchivesReport(t *testing.T) {
	client := new(mocks.Client)
	store := new(storagemocks.Client)
	store.On("PutObject", mock.Anything, "cost-sync", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "reports/cost_sync_")
	}), mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil).Once()

	svc := newTestService(client)
	svc.archive = storage.NewArchive(store, "cost-sync")
	sess := loggedInSession(t, svc, client)

	sess.SetProducts([]reconcile.ProductRecord{{ID: 1, SKU: "W-1", Name: "Widget"}}, false)
	sess.Select(1)
	sess.SetLookup(reconcile.CostLookup{"W-1": 12.5})
	client.On("WriteCost", mock.Anything, int64(2), int64(1), 12.5).Return(nil).Once()

	_, err := svc.Execute(context.Background(), sess)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestHistoryAndArchiveDisabled(t *testing.T) {
	client := new(mocks.Client)
	svc := newTestService(client)

	_, err := svc.History(context.Background(), 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)

	_, err = svc.ArchivedReports(context.Background())
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}
