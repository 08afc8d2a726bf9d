package sync

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"cost-sync/core/odoo"
	"cost-sync/core/odoo/mocks"
	"cost-sync/core/reconcile"
	"cost-sync/feature/sync/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestApp(client odoo.Client) (*fiber.App, *Service) {
	svc := newTestService(client)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req)
	assert.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, data
}

func loginToken(t *testing.T, app *fiber.App, client *mocks.Client) string {
	t.Helper()
	client.On("ListCompanies", mock.Anything).Return(testCompanies(), nil).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/auth/login", "", models.LoginRequest{
		Username: "admin",
		Password: "secret",
	})
	assert.Equal(t, fiber.StatusOK, status)

	var resp models.LoginResponse
	assert.NoError(t, json.Unmarshal(body, &resp))
	assert.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHandleLogin(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)
	client.On("ListCompanies", mock.Anything).Return(testCompanies(), nil).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/auth/login", "", models.LoginRequest{
		Username: "admin",
		Password: "secret",
	})
	assert.Equal(t, fiber.StatusOK, status)

	var resp models.LoginResponse
	assert.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "admin", resp.Operator)
	assert.Equal(t, "Main Company", resp.Source.Name)
	assert.Equal(t, "Branch East", resp.Target.Name)
	assert.Len(t, resp.Companies, 3)
}

func TestHandleLoginRejectsBadCredentials(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)

	status, _ := doJSON(t, app, fiber.MethodPost, "/auth/login", "", models.LoginRequest{
		Username: "admin",
		Password: "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRoutesRequireSession(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)

	status, _ := doJSON(t, app, fiber.MethodGet, "/products", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/companies", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestHandleSetTarget(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)
	token := loginToken(t, app, client)

	status, body := doJSON(t, app, fiber.MethodPut, "/session/target", token, models.TargetRequest{CompanyID: 3})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Branch West")

	status, _ = doJSON(t, app, fiber.MethodPut, "/session/target", token, models.TargetRequest{CompanyID: 42})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSyncWorkflow(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)
	token := loginToken(t, app, client)

	products := []reconcile.ProductRecord{
		{ID: 1, SKU: "W-1", Name: "Widget"},
		{ID: 2, Name: "Gadget"},
	}
	client.On("FindZeroCostProducts", mock.Anything, int64(2)).Return(products, false, nil).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/products/fetch", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	var fetch models.FetchResponse
	assert.NoError(t, json.Unmarshal(body, &fetch))
	assert.Equal(t, 2, fetch.Count)
	assert.False(t, fetch.Truncated)

	status, body = doJSON(t, app, fiber.MethodGet, "/products?page=1&page_size=10", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	var page models.ProductPage
	assert.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Products, 2)

	status, body = doJSON(t, app, fiber.MethodPost, "/products/selection", token, models.SelectionRequest{
		Action: models.SelectionSelectAll,
	})
	assert.Equal(t, fiber.StatusOK, status)

	var sel models.SelectionResponse
	assert.NoError(t, json.Unmarshal(body, &sel))
	assert.Equal(t, 2, sel.SelectedCount)

	refs := []reconcile.ProductRecord{{ID: 100, SKU: "W-1", Name: "Widget", Cost: 12.5}}
	client.On("FindReferenceProducts", mock.Anything, int64(1), []string{"W-1"}, []string{"Widget", "Gadget"}).
		Return(refs, nil).Once()

	status, body = doJSON(t, app, fiber.MethodPost, "/references/fetch", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	var refResp models.ReferencesResponse
	assert.NoError(t, json.Unmarshal(body, &refResp))
	assert.Equal(t, 1, refResp.Matches)
	assert.Equal(t, 2, refResp.Selected)

	client.On("WriteCost", mock.Anything, int64(2), int64(1), 12.5).Return(nil).Once()

	status, body = doJSON(t, app, fiber.MethodPost, "/sync/execute", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	var exec models.ExecuteResponse
	assert.NoError(t, json.Unmarshal(body, &exec))
	assert.Equal(t, 1, exec.Summary.Updated)
	assert.Equal(t, 1, exec.Summary.Skipped)
	assert.Equal(t, 2, exec.Summary.Total)

	status, body = doJSON(t, app, fiber.MethodGet, "/report", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Widget")
	assert.Contains(t, string(body), "Updated")

	client.AssertExpectations(t)
}

func TestHandleFetchProductsBadGateway(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)
	token := loginToken(t, app, client)

	client.On("FindZeroCostProducts", mock.Anything, int64(2)).
		Return(nil, false, &odoo.Error{Kind: odoo.KindRead, Op: "search", Err: errors.New("timeout")}).Once()

	status, _ := doJSON(t, app, fiber.MethodPost, "/products/fetch", token, nil)
	assert.Equal(t, fiber.StatusBadGateway, status)
}

func TestHandleExecuteWithoutReferences(t *testing.T) {
	client := new(mocks.Client)
	app, svc := newTestApp(client)
	token := loginToken(t, app, client)

	sess, ok := svc.Sessions().Get(token)
	assert.True(t, ok)
	sess.SetProducts([]reconcile.ProductRecord{{ID: 1, Name: "Widget"}}, false)
	sess.Select(1)

	status, _ := doJSON(t, app, fiber.MethodPost, "/sync/execute", token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestHandleHistoryDisabled(t *testing.T) {
	client := new(mocks.Client)
	app, _ := newTestApp(client)
	token := loginToken(t, app, client)

	status, _ := doJSON(t, app, fiber.MethodGet, "/history", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/reports", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleLogout(t *testing.T) {
	client := new(mocks.Client)
	app, svc := newTestApp(client)
	token := loginToken(t, app, client)

	status, _ := doJSON(t, app, fiber.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, svc.Sessions().Len())

	status, _ = doJSON(t, app, fiber.MethodGet, "/companies", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
