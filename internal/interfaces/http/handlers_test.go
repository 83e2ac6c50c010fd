package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/dispatch-api/internal/application/dispatch"
	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/infrastructure/excel"
	"github.com/jhoicas/dispatch-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/dispatch-api/internal/interfaces/http"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

// memIdempotency store de idempotencia en memoria para los tests.
type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memIdempotency) SetIdempotency(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memIdempotency) ReleaseIdempotency(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		Reconciliation: dispatch.NewReconciliationUseCase(store, log),
		Orders:         dispatch.NewOrderUseCase(store, store.Repos(), log),
		Stock:          inventory.NewStockUseCase(store, store.Repos(), excel.NewSummaryExporter(), []string{"Delhi", "South"}, log),
		Idempotency:    &memIdempotency{keys: map[string]bool{}},
		JWTSecret:      testJWTSecret,
		Logger:         log,
	})
	return app
}

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newClient(t *testing.T, app *fiber.App, role string) *apiClient {
	return &apiClient{t: t, app: app, token: tokenForRole(t, role)}
}

func (c *apiClient) do(method, path string, body interface{}, headers ...string) (int, []byte) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, out
}

func (c *apiClient) json(method, path string, body interface{}, wantStatus int, out interface{}) {
	c.t.Helper()
	status, raw := c.do(method, path, body)
	require.Equal(c.t, wantStatus, status, string(raw))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(raw, out))
	}
}

// seedOrder crea stock, una orden con P1 (Delhi) y S1 (South, repuesto) y completa el despacho.
func seedOrder(t *testing.T, c *apiClient) (orderID, p1, s1 string) {
	t.Helper()
	c.json(http.MethodPost, "/api/stock/inward", fiber.Map{"item_code": "P1", "item_name": "Purificador", "item_class": "product", "godown": "Delhi", "quantity": 5}, http.StatusCreated, nil)
	c.json(http.MethodPost, "/api/stock/inward", fiber.Map{"item_code": "S1", "item_name": "Filtro", "item_class": "spare", "godown": "South", "quantity": "5"}, http.StatusCreated, nil)

	var created struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	c.json(http.MethodPost, "/api/orders", fiber.Map{"order_number": "O1"}, http.StatusCreated, &created)
	orderID = created.Order.ID
	require.NotEmpty(t, orderID)

	var item struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	}
	c.json(http.MethodPost, "/api/orders/"+orderID+"/dispatch", fiber.Map{"item_code": "P1", "item_class": "product", "godown": "Delhi"}, http.StatusCreated, &item)
	p1 = item.Item.ID
	c.json(http.MethodPost, "/api/orders/"+orderID+"/dispatch", fiber.Map{"item_code": "S1", "item_class": "spare", "godown": "South"}, http.StatusCreated, &item)
	s1 = item.Item.ID

	c.json(http.MethodPost, "/api/orders/"+orderID+"/dispatch/complete", nil, http.StatusOK, nil)
	return orderID, p1, s1
}

func TestInstallationAction_DevolucionParcialYTotal(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleAdmin)
	orderID, p1, s1 := seedOrder(t, c)

	var res struct {
		Success    bool `json:"success"`
		IsReturned int  `json:"is_returned"`
		Returned   []struct {
			DispatchID string `json:"dispatch_id"`
		} `json:"returned"`
	}
	c.json(http.MethodPost, "/api/installation/action", fiber.Map{
		"order_id": orderID, "action": "PARTIAL_RETURN",
		"items": []fiber.Map{{"dispatch_id": p1, "reason": "dañado"}},
	}, http.StatusOK, &res)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.IsReturned)
	require.Len(t, res.Returned, 1)
	assert.Equal(t, p1, res.Returned[0].DispatchID)

	var summary struct {
		Locations map[string]string `json:"locations"`
	}
	c.json(http.MethodGet, "/api/stock/summary/P1?class=product", nil, http.StatusOK, &summary)
	assert.Equal(t, "5", summary.Locations["Delhi"])

	c.json(http.MethodPost, "/api/installation/action", fiber.Map{
		"order_id": orderID, "action": "PARTIAL_RETURN",
		"items": []fiber.Map{{"dispatch_id": s1, "reason": "sobrante"}},
	}, http.StatusOK, &res)
	assert.Equal(t, 1, res.IsReturned)

	var returns struct {
		Total int `json:"total"`
	}
	c.json(http.MethodGet, "/api/orders/"+orderID+"/returns", nil, http.StatusOK, &returns)
	assert.Equal(t, 2, returns.Total)

	var report struct {
		Drifts []interface{} `json:"drifts"`
	}
	c.json(http.MethodGet, "/api/stock/reconciliation?class=spare", nil, http.StatusOK, &report)
	assert.Empty(t, report.Drifts)
}

func TestInstallationAction_Errores(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleInstalador)

	cases := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"acción inválida", fiber.Map{"order_id": "x", "action": "CANCEL"}, http.StatusBadRequest, "INVALID_ACTION"},
		{"sin order_id", fiber.Map{"action": "INSTALLED"}, http.StatusBadRequest, "VALIDATION"},
		{"parcial vacío", fiber.Map{"order_id": "x", "action": "PARTIAL_RETURN", "items": []fiber.Map{}}, http.StatusBadRequest, "VALIDATION"},
		{"orden inexistente", fiber.Map{"order_id": "x", "action": "RETURNED"}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := c.do(http.MethodPost, "/api/installation/action", tc.body)
			assert.Equal(t, tc.status, status, string(raw))
			assert.Contains(t, string(raw), tc.code)
		})
	}

	status, raw := c.do(http.MethodPost, "/api/installation/action", nil)
	assert.Equal(t, http.StatusBadRequest, status, string(raw))
}

func TestInstallationAction_SinToken(t *testing.T) {
	app := buildTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/installation/action", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCompleteDispatch_StockInsuficiente409(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleBodeguero)

	var created struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	c.json(http.MethodPost, "/api/orders", fiber.Map{"order_number": "O9"}, http.StatusCreated, &created)
	c.json(http.MethodPost, "/api/orders/"+created.Order.ID+"/dispatch", fiber.Map{"item_code": "P1", "godown": "Delhi", "quantity": 2}, http.StatusCreated, nil)

	status, raw := c.do(http.MethodPost, "/api/orders/"+created.Order.ID+"/dispatch/complete", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(raw), "INSUFFICIENT_STOCK")

	var order struct {
		Items []struct {
			StockDeducted bool   `json:"stock_deducted"`
			ItemClass     string `json:"item_class"`
		} `json:"items"`
	}
	c.json(http.MethodGet, "/api/orders/"+created.Order.ID, nil, http.StatusOK, &order)
	require.Len(t, order.Items, 1)
	assert.False(t, order.Items[0].StockDeducted)
	assert.Equal(t, "product", order.Items[0].ItemClass)
}

func TestCompleteDispatch_OrdenDevuelta409(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleAdmin)
	orderID, _, _ := seedOrder(t, c)

	c.json(http.MethodPost, "/api/installation/action", fiber.Map{"order_id": orderID, "action": "RETURNED"}, http.StatusOK, nil)

	status, raw := c.do(http.MethodPost, "/api/orders/"+orderID+"/dispatch/complete", nil)
	assert.Equal(t, http.StatusConflict, status, string(raw))
	assert.Contains(t, string(raw), "CONFLICT")

	var summary struct {
		Locations map[string]string `json:"locations"`
	}
	c.json(http.MethodGet, "/api/stock/summary/P1?class=product", nil, http.StatusOK, &summary)
	assert.Equal(t, "5", summary.Locations["Delhi"])
}

func TestCantidadConCuatroDecimales400(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleBodeguero)

	status, raw := c.do(http.MethodPost, "/api/stock/inward", fiber.Map{"item_code": "P1", "item_class": "product", "godown": "Delhi", "quantity": "1.0005"})
	assert.Equal(t, http.StatusBadRequest, status, string(raw))
	assert.Contains(t, string(raw), "VALIDATION")
}

func TestOrders_OtraEmpresaNoVe(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleAdmin)
	orderID, _, _ := seedOrder(t, c)

	other := &apiClient{t: t, app: app, token: tokenFor(t, "otra-empresa", apphttp.RoleAdmin)}
	status, _ := other.do(http.MethodGet, "/api/orders/"+orderID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = other.do(http.MethodPost, "/api/installation/action", fiber.Map{"order_id": orderID, "action": "RETURNED"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStockInward_RolInstaladorProhibido(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleInstalador)
	status, raw := c.do(http.MethodPost, "/api/stock/inward", fiber.Map{"item_code": "P1", "godown": "Delhi", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, status, string(raw))
}

func TestIdempotencyKey_Repetida409(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleAdmin)
	body := fiber.Map{"item_code": "P1", "godown": "Delhi", "quantity": 1}

	status, _ := c.do(http.MethodPost, "/api/stock/inward", body, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusCreated, status)
	status, raw := c.do(http.MethodPost, "/api/stock/inward", body, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(raw), "DUPLICATE_REQUEST")

	// Una petición fallida libera su clave.
	status, _ = c.do(http.MethodPost, "/api/stock/inward", fiber.Map{"item_code": "P1"}, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = c.do(http.MethodPost, "/api/stock/inward", body, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusCreated, status)

	var summary struct {
		Total string `json:"total"`
	}
	c.json(http.MethodGet, "/api/stock/summary/P1", nil, http.StatusOK, &summary)
	assert.Equal(t, "2", summary.Total)
}

func TestStockQueries(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleAdmin)
	seedOrder(t, c)

	var list struct {
		Total     int `json:"total"`
		Summaries []struct {
			ItemCode string `json:"item_code"`
		} `json:"summaries"`
	}
	c.json(http.MethodGet, "/api/stock/summary?class=product", nil, http.StatusOK, &list)
	assert.Equal(t, 1, list.Total)

	status, raw := c.do(http.MethodGet, "/api/stock/summary", nil)
	assert.Equal(t, http.StatusBadRequest, status, string(raw))

	var ledger struct {
		Total   int `json:"total"`
		Entries []struct {
			Direction string `json:"direction"`
		} `json:"entries"`
	}
	c.json(http.MethodGet, "/api/stock/ledger/S1?class=spare&limit=10", nil, http.StatusOK, &ledger)
	require.Equal(t, 2, ledger.Total)
	assert.Equal(t, "OUT", ledger.Entries[0].Direction)

	status, _ = c.do(http.MethodGet, "/api/stock/summary/NOPE?class=product", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStockExport_XLSX(t *testing.T) {
	app := buildTestApp(t)
	c := newClient(t, app, apphttp.RoleAdmin)
	seedOrder(t, c)

	req := httptest.NewRequest(http.MethodGet, "/api/stock/summary/export?class=product", nil)
	req.Header.Set("Authorization", c.token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock_product.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Código", "Nombre", "Delhi", "South", "Total"}, rows[0])
	assert.Equal(t, []string{"P1", "Purificador", "4", "0", "4"}, rows[1])
}
