package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"pricecheck/frontend/cart"
	"pricecheck/frontend/login"
	"pricecheck/frontend/scan"
	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/cache"
	"pricecheck/infrastructure/sqlite"
)

const testPassword = "2436"

type integrationEnv struct {
	server *httptest.Server
	db     *sqlite.DB
}

func setupIntegrationServer(t *testing.T) (*integrationEnv, *http.Client) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server-integration.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if err := login.UpsertSharedPasswordHash(context.Background(), db, nil, "test", testPassword); err != nil {
		t.Fatalf("seed shared password: %v", err)
	}
	if err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO products (item_no, product_name, price_excl_tax, unit)
VALUES ('A-100', 'Olive Oil 1L', 1000, 'bottle'), ('B-300', 'Rice 10kg', 333, 'bag')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO product_barcodes (barcode, product_id)
VALUES ('4006381333931', (SELECT id FROM products WHERE item_no = 'A-100')),
       ('4006381333948', (SELECT id FROM products WHERE item_no = 'B-300'))`)
		return err
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	sessionCache := cache.NewSessionCache()
	cartStore := cart.NewStore()
	scanGate := scan.NewGate()
	auditSvc := audit.NewService()

	s := NewServer("127.0.0.1:0", db, sessionCache, cartStore, scanGate, auditSvc, 5)
	ts := httptest.NewServer(s.router)
	env := &integrationEnv{server: ts, db: db}
	t.Cleanup(func() {
		env.server.Close()
		_ = env.db.Close()
	})

	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func postJSON(t *testing.T, client *http.Client, baseURL, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := csrfCookie(t, client, baseURL); token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func csrfCookie(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "X-CSRF-Token" {
			return c.Value
		}
	}
	return ""
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func loginSession(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	resp := get(t, client, baseURL, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postJSON(t, client, baseURL, "/api/login", map[string]string{"password": testPassword})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login 200, got %d", resp.StatusCode)
	}
	data := decodeJSON(t, resp)
	if data["success"] != true {
		t.Fatalf("expected login success, got %+v", data)
	}
	if _, ok := data["expires_at"].(float64); !ok {
		t.Fatalf("expected expires_at in login response, got %+v", data)
	}
}

func TestCSRFPostWithoutTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	// No GET first: no CSRF token in the jar, no referer header.
	body := bytes.NewReader([]byte(`{"password":"2436"}`))
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/login", body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for missing csrf, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/login")
	_ = resp.Body.Close()

	resp = postJSON(t, client, env.server.URL, "/api/login", map[string]string{"password": "9999"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	data := decodeJSON(t, resp)
	if data["success"] != false || data["message"] != "wrong password" {
		t.Fatalf("unexpected wrong-password payload: %+v", data)
	}
}

func TestAPIWithoutSessionGets401JSON(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/api/price?barcode=4006381333931")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected JSON 401, got content type %q", ct)
	}
}

func TestPageWithoutSessionRedirectsToLogin(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/lookup")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 without session, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Location"), "/login") {
		t.Fatalf("expected redirect to login, got %s", resp.Header.Get("Location"))
	}
}

func TestPriceLookupFoundAndNotFound(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginSession(t, client, env.server.URL)

	resp := get(t, client, env.server.URL, "/api/price?barcode=4006381333931")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := decodeJSON(t, resp)
	if data["success"] != true || data["product_name"] != "Olive Oil 1L" {
		t.Fatalf("unexpected price payload: %+v", data)
	}
	if data["price_excl_tax"].(float64) != 1000 {
		t.Fatalf("expected price 1000, got %v", data["price_excl_tax"])
	}

	// Unknown barcode is a well-formed miss, not an error status.
	resp = get(t, client, env.server.URL, "/api/price?barcode=0000000000000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for miss, got %d", resp.StatusCode)
	}
	data = decodeJSON(t, resp)
	if data["success"] != false || data["message"] == "" {
		t.Fatalf("unexpected miss payload: %+v", data)
	}
}

func TestSearchEmptyResultIsSuccess(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginSession(t, client, env.server.URL)

	resp := get(t, client, env.server.URL, "/api/search?q=olive")
	data := decodeJSON(t, resp)
	if data["success"] != true {
		t.Fatalf("expected search success, got %+v", data)
	}
	if items := data["items"].([]any); len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	resp = get(t, client, env.server.URL, "/api/search?q=nothing-matches-this")
	data = decodeJSON(t, resp)
	if data["success"] != true {
		t.Fatalf("expected success for empty result, got %+v", data)
	}
	if items := data["items"].([]any); len(items) != 0 {
		t.Fatalf("expected empty items list, got %d", len(items))
	}
}

func TestScanGateAcceptsThenDebounces(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginSession(t, client, env.server.URL)

	resp := postJSON(t, client, env.server.URL, "/api/scan", map[string]string{"code": "4006381333931", "format": "ean_13"})
	data := decodeJSON(t, resp)
	if data["accepted"] != true || data["success"] != true {
		t.Fatalf("expected first scan accepted, got %+v", data)
	}
	if data["product_name"] != "Olive Oil 1L" {
		t.Fatalf("expected product in scan payload, got %+v", data)
	}

	// Immediate repeat is inside the debounce window and stays silent.
	resp = postJSON(t, client, env.server.URL, "/api/scan", map[string]string{"code": "4006381333931", "format": "ean_13"})
	data = decodeJSON(t, resp)
	if data["accepted"] != false || data["success"] != true {
		t.Fatalf("expected repeat rejected silently, got %+v", data)
	}

	// Malformed codes never reach the lookup.
	resp = postJSON(t, client, env.server.URL, "/api/scan", map[string]string{"code": "12345", "format": "ean_13"})
	data = decodeJSON(t, resp)
	if data["accepted"] != false {
		t.Fatalf("expected short code rejected, got %+v", data)
	}
}

func TestCartFlowAndInvoiceTotals(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginSession(t, client, env.server.URL)

	resp := postJSON(t, client, env.server.URL, "/api/cart/items", map[string]any{"barcode": "4006381333931", "quantity": 2})
	data := decodeJSON(t, resp)
	if data["success"] != true {
		t.Fatalf("expected add success, got %+v", data)
	}

	// Same barcode merges rather than appending.
	resp = postJSON(t, client, env.server.URL, "/api/cart/items", map[string]any{"barcode": "4006381333931", "quantity": 1})
	data = decodeJSON(t, resp)
	items := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(items))
	}
	line := items[0].(map[string]any)
	if line["quantity"].(float64) != 3 {
		t.Fatalf("expected merged quantity 3, got %v", line["quantity"])
	}
	summary := data["summary"].(map[string]any)
	if summary["total_amount"].(float64) != 3000 {
		t.Fatalf("expected total 3000, got %v", summary["total_amount"])
	}

	resp = postJSON(t, client, env.server.URL, "/api/cart/items/4006381333931/adjust", map[string]any{"delta": -1})
	data = decodeJSON(t, resp)
	summary = data["summary"].(map[string]any)
	if summary["total_quantity"].(float64) != 2 {
		t.Fatalf("expected quantity 2 after adjust, got %v", summary["total_quantity"])
	}

	// tax rate 5: round(2000 * 5 / 100) = 100
	resp = get(t, client, env.server.URL, "/cart/invoice")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected invoice page 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read invoice body: %v", err)
	}
	_ = resp.Body.Close()
	text := string(body)
	if !strings.Contains(text, ">2000<") || !strings.Contains(text, ">100<") || !strings.Contains(text, ">2100<") {
		t.Fatalf("expected subtotal/tax/total in invoice page")
	}

	resp = get(t, client, env.server.URL, "/cart/invoice.pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected invoice pdf 200, got %d", resp.StatusCode)
	}
	pdfBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read pdf body: %v", err)
	}
	_ = resp.Body.Close()
	if !strings.HasPrefix(string(pdfBody), "%PDF") {
		t.Fatalf("expected PDF response")
	}

	// Set-quantity zero removes, then clearing an empty cart stays friendly.
	resp = postJSON(t, client, env.server.URL, "/api/cart/items/4006381333931/quantity", map[string]any{"quantity": 0})
	data = decodeJSON(t, resp)
	if len(data["items"].([]any)) != 0 {
		t.Fatalf("expected empty cart after quantity zero, got %+v", data)
	}

	resp = postJSON(t, client, env.server.URL, "/api/cart/clear", map[string]any{})
	data = decodeJSON(t, resp)
	if data["success"] != true || data["message"] == "" {
		t.Fatalf("expected informational clear-empty response, got %+v", data)
	}
}

func TestCatalogImportAndLabels(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginSession(t, client, env.server.URL)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("_csrf", csrfCookie(t, client, env.server.URL)); err != nil {
		t.Fatalf("write csrf field: %v", err)
	}
	part, err := writer.CreateFormFile("file", "catalog.csv")
	if err != nil {
		t.Fatalf("create file field: %v", err)
	}
	csvData := "item_no,product_name,price_excl_tax,unit,barcode\nC-500,Soy Sauce 500ml,450,bottle,4006381333955\n"
	if _, err := part.Write([]byte(csvData)); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/catalog/import", &body)
	if err != nil {
		t.Fatalf("build import request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post import: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected import 303, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Location"), "/catalog?flash=") {
		t.Fatalf("expected flash redirect, got %s", resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()

	resp = get(t, client, env.server.URL, "/catalog")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected catalog page 200, got %d", resp.StatusCode)
	}
	pageBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read catalog body: %v", err)
	}
	_ = resp.Body.Close()
	if !strings.Contains(string(pageBody), "Soy Sauce 500ml") {
		t.Fatalf("expected imported product on catalog page")
	}

	resp = get(t, client, env.server.URL, "/catalog/labels.pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected labels pdf 200, got %d", resp.StatusCode)
	}
	labelBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read labels body: %v", err)
	}
	_ = resp.Body.Close()
	if !strings.HasPrefix(string(labelBody), "%PDF") {
		t.Fatalf("expected PDF labels response")
	}
}

func TestLogoutPurgesSessionAndCart(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginSession(t, client, env.server.URL)

	resp := postJSON(t, client, env.server.URL, "/api/cart/items", map[string]any{"barcode": "4006381333931", "quantity": 1})
	_ = resp.Body.Close()

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/logout", nil)
	if err != nil {
		t.Fatalf("build logout request: %v", err)
	}
	req.Header.Set("X-CSRF-Token", csrfCookie(t, client, env.server.URL))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("post logout: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected logout 303, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = get(t, client, env.server.URL, "/api/cart")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRootRedirectsBySession(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/")
	if resp.StatusCode != http.StatusSeeOther || !strings.Contains(resp.Header.Get("Location"), "/login") {
		t.Fatalf("expected anonymous root redirect to login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	_ = resp.Body.Close()

	loginSession(t, client, env.server.URL)
	resp = get(t, client, env.server.URL, "/")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || !strings.Contains(resp.Header.Get("Location"), "/lookup") {
		t.Fatalf("expected root redirect to lookup, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestHealthEndpoint(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/health")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected health 200, got %d", resp.StatusCode)
	}
}
