package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/ferreteria-api/internal/application/auth"
	"github.com/jhoicas/ferreteria-api/internal/application/checkout"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/application/usecase"
	"github.com/jhoicas/ferreteria-api/internal/domain/operation"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kvrepo"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/ferreteria-api/internal/interfaces/http"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

const prefix = "/make-server-2eb8085d"

type testAPI struct {
	app        *fiber.App
	adminToken string
}

// newTestAPI arma la API completa sobre el store en memoria, con un admin ya creado.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := kv.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	authUC := auth.NewAuthUseCase(kvrepo.NewUserRepository(store),
		auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "test"}).
		WithBcryptCost(bcrypt.MinCost)
	_, err := authUC.CreateAdmin(context.Background(), "admin@ferreteria.pe", "secreto123", "Admin")
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Prefix:     prefix,
		ProductUC:  usecase.NewProductUseCase(kvrepo.NewProductRepository(store)).WithTxRunner(kvrepo.NewTxRunner(store)),
		CheckoutUC: checkout.NewUseCase(kvrepo.NewTxRunner(store), operation.NewGenerator(nil)),
		SalesUC:    sales.NewUseCase(kvrepo.NewSaleRepository(store), pdf.NewReceiptGenerator("Ferretería", time.UTC)),
		AuthUC:     authUC,
		Logger:     logger.Nop(),
	})

	api := &testAPI{app: app}
	api.adminToken = api.login(t, "admin@ferreteria.pe", "secreto123")
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, prefix+path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

type productBody struct {
	Success bool `json:"success"`
	Product struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Stock    int     `json:"stock"`
		Category string  `json:"category"`
	} `json:"product"`
}

func (a *testAPI) createProduct(t *testing.T, body string) productBody {
	t.Helper()
	resp, raw := a.do(t, http.MethodPost, "/products", a.adminToken, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var out productBody
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type errBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func decodeErr(t *testing.T, raw []byte) errBody {
	t.Helper()
	var e errBody
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	assert.False(t, e.Success)
	assert.NotEmpty(t, e.Error)
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CRUD(t *testing.T) {
	api := newTestAPI(t)

	created := api.createProduct(t, `{"name":"Martillo","price":"25.50","unit":"unidad","stock":"10"}`)
	assert.True(t, created.Success)
	assert.Equal(t, 25.5, created.Product.Price, "price como string numérico se convierte")
	assert.Equal(t, 10, created.Product.Stock)
	assert.Equal(t, "General", created.Product.Category)
	id := created.Product.ID

	resp, raw := api.do(t, http.MethodGet, "/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got productBody
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Martillo", got.Product.Name)

	resp, raw = api.do(t, http.MethodPut, "/products/"+id, api.adminToken, `{"stock":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 3, got.Product.Stock)
	assert.Equal(t, 25.5, got.Product.Price, "los campos no enviados se conservan")

	resp, raw = api.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Success  bool          `json:"success"`
		Products []interface{} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Products, 1)

	resp, raw = api.do(t, http.MethodDelete, "/products/"+id, api.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"message":"Product deleted successfully"}`, string(raw))

	resp, raw = api.do(t, http.MethodDelete, "/products/"+id, api.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeErr(t, raw).Code)
}

func TestProducts_CreateValidacion(t *testing.T) {
	api := newTestAPI(t)

	cases := map[string]string{
		"sin nombre":      `{"price":1,"unit":"kg"}`,
		"sin unidad":      `{"name":"Clavos","price":1}`,
		"sin precio":      `{"name":"Clavos","unit":"kg"}`,
		"precio negativo": `{"name":"Clavos","unit":"kg","price":-1}`,
		"stock negativo":  `{"name":"Clavos","unit":"kg","price":1,"stock":-2}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, raw := api.do(t, http.MethodPost, "/products", api.adminToken, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
			assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, raw).Code)
		})
	}

	resp, raw := api.do(t, http.MethodPost, "/products", api.adminToken, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeErr(t, raw).Code)
}

func TestProducts_EscrituraRequiereAdmin(t *testing.T) {
	api := newTestAPI(t)

	resp, raw := api.do(t, http.MethodPost, "/products", "", `{"name":"X","unit":"u","price":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeErr(t, raw).Code)

	resp, _ = api.do(t, http.MethodPost, "/signup", "", map[string]string{
		"email": "cliente@ferreteria.pe", "password": "123456", "name": "Cliente",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	userToken := api.login(t, "cliente@ferreteria.pe", "123456")

	resp, raw = api.do(t, http.MethodPost, "/reset-products", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeErr(t, raw).Code)
}

func TestProducts_ResetEInitSampleData(t *testing.T) {
	api := newTestAPI(t)

	resp, raw := api.do(t, http.MethodPost, "/init-sample-data", api.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"message":"Sample data initialized","count":6}`, string(raw))

	resp, raw = api.do(t, http.MethodPost, "/init-sample-data", api.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"message":"Data already exists","count":6}`, string(raw))

	api.createProduct(t, `{"name":"Extra","unit":"u","price":1}`)
	resp, raw = api.do(t, http.MethodPost, "/reset-products", api.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"count":6}`, string(raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

type saleBody struct {
	Success bool `json:"success"`
	Sale    struct {
		ID              string  `json:"id"`
		OperationNumber string  `json:"operationNumber"`
		Total           float64 `json:"total"`
		LastFourDigits  string  `json:"lastFourDigits"`
	} `json:"sale"`
}

func TestSales_CheckoutYConsulta(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct(t, `{"name":"Cemento","unit":"bolsa","price":28.9,"stock":5}`)

	resp, raw := api.do(t, http.MethodPost, "/sales", "", map[string]interface{}{
		"customerName":   "Juan Pérez",
		"paymentMethod":  "card",
		"lastFourDigits": "4242",
		"items": []map[string]interface{}{
			{"id": p.Product.ID, "name": "Cemento", "price": 28.9, "unit": "bolsa", "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var sale saleBody
	require.NoError(t, json.Unmarshal(raw, &sale))
	assert.True(t, sale.Success)
	assert.Equal(t, 57.8, sale.Sale.Total)
	assert.Regexp(t, `^OP-\d{14}-[A-Z0-9]{6}$`, sale.Sale.OperationNumber)
	assert.Equal(t, "4242", sale.Sale.LastFourDigits)

	resp, raw = api.do(t, http.MethodGet, "/products/"+p.Product.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod productBody
	require.NoError(t, json.Unmarshal(raw, &prod))
	assert.Equal(t, 3, prod.Product.Stock)

	resp, _ = api.do(t, http.MethodGet, "/sales/"+sale.Sale.ID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "consulta pública por id")

	resp, raw = api.do(t, http.MethodGet, "/sales/summary", api.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"success":true,"summary":{"totalRevenue":57.8,"totalSales":1,"totalItems":2}}`, string(raw))

	resp, raw = api.do(t, http.MethodGet, "/sales", api.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Sales []interface{} `json:"sales"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Sales, 1)

	resp, _ = api.do(t, http.MethodGet, "/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "historial solo admin")
}

func TestSales_CheckoutErrores(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct(t, `{"name":"Taladro","unit":"unidad","price":150,"stock":1}`)

	item := func(id string, qty int) []map[string]interface{} {
		return []map[string]interface{}{{"id": id, "name": "Taladro", "price": 150, "unit": "unidad", "quantity": qty}}
	}

	resp, raw := api.do(t, http.MethodPost, "/sales", "", map[string]interface{}{
		"customerName": "Ana", "paymentMethod": "cash", "items": []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, raw).Code)

	resp, raw = api.do(t, http.MethodPost, "/sales", "", map[string]interface{}{
		"customerName": "Ana", "paymentMethod": "cash", "items": item("no-existe", 1),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeErr(t, raw).Code)

	resp, raw = api.do(t, http.MethodPost, "/sales", "", map[string]interface{}{
		"customerName": "Ana", "paymentMethod": "cash", "items": item(p.Product.ID, 2),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeErr(t, raw).Code)

	resp, raw = api.do(t, http.MethodPost, "/sales", "", map[string]interface{}{
		"customerName": "Ana", "paymentMethod": "cash",
		"items": append(item(p.Product.ID, math.MaxInt), item(p.Product.ID, 2)...),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cantidades que desbordan se rechazan")
	assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, raw).Code)

	resp, raw = api.do(t, http.MethodGet, "/products/"+p.Product.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod productBody
	require.NoError(t, json.Unmarshal(raw, &prod))
	assert.Equal(t, 1, prod.Product.Stock, "ningún rechazo toca el stock")

	resp, raw = api.do(t, http.MethodGet, "/sales/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeErr(t, raw).Code)
}

func TestSales_Receipt(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct(t, `{"name":"Brocha","unit":"unidad","price":12,"stock":4}`)

	_, raw := api.do(t, http.MethodPost, "/sales", "", map[string]interface{}{
		"customerName": "Luis", "paymentMethod": "cash",
		"items": []map[string]interface{}{{"id": p.Product.ID, "name": "Brocha", "price": 12, "unit": "unidad", "quantity": 1}},
	})
	var sale saleBody
	require.NoError(t, json.Unmarshal(raw, &sale))

	resp, raw := api.do(t, http.MethodGet, "/sales/"+sale.Sale.ID+"/receipt", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), sale.Sale.OperationNumber)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SignupLoginMe(t *testing.T) {
	api := newTestAPI(t)

	resp, raw := api.do(t, http.MethodPost, "/signup", "", map[string]string{
		"email": "Maria@Ferreteria.pe", "password": "clave12", "name": "María",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.NotContains(t, string(raw), "passwordHash")

	resp, raw = api.do(t, http.MethodPost, "/signup", "", map[string]string{
		"email": "maria@ferreteria.pe", "password": "otra123", "name": "Otra",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", decodeErr(t, raw).Code)

	token := api.login(t, "maria@ferreteria.pe", "clave12")
	resp, raw = api.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		User struct {
			Role string `json:"role"`
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "user", me.User.Role)
	assert.Equal(t, "María", me.User.Name)

	resp, raw = api.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "maria@ferreteria.pe", "password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeErr(t, raw).Code)
}

func TestAuth_SignupValidacion(t *testing.T) {
	api := newTestAPI(t)

	resp, raw := api.do(t, http.MethodPost, "/signup", "", map[string]string{
		"email": "no-es-email", "password": "clave12", "name": "X",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decodeErr(t, raw)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	assert.Contains(t, e.Error, "email")

	resp, raw = api.do(t, http.MethodPost, "/signup", "", map[string]string{
		"email": "a@b.pe", "password": "123", "name": "X",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeErr(t, raw).Error, "password")
}

func TestAuth_SignupAdminSoloPorAdmin(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"email": "jefe@ferreteria.pe", "password": "clave12", "name": "Jefe", "role": "admin"}

	resp, raw := api.do(t, http.MethodPost, "/signup", "", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeErr(t, raw).Code)

	resp, raw = api.do(t, http.MethodPost, "/signup", api.adminToken, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"role":"admin"`)
}
