package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carteira/internal/handlers"
	"carteira/internal/logger"
	"carteira/internal/middleware"
	"carteira/internal/models"
	"carteira/internal/services"
	"carteira/internal/uploads"
	"carteira/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Store  *uploads.LocalStore
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack with the auth limiter disabled.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return newTestApp(t, func(c *gin.Context) { c.Next() })
}

// newTestApp wires the real services and routes over an isolated database
// and a temporary upload directory.
func newTestApp(t *testing.T, authLimit gin.HandlerFunc) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	store, err := uploads.NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}

	// Services
	period := services.Period{}
	userService := services.NewUserService(db)
	profileService := services.NewProfileService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, accountService, period)
	reportService := services.NewReportService(db, period)
	auditService := services.NewAuditService(db)

	tokens := middleware.NewTokenManager("integration-secret", 15*time.Minute, 24*time.Hour)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Handlers{
		Auth:        handlers.NewAuthHandler(userService, tokens, auditService),
		Profile:     handlers.NewProfileHandler(userService, profileService, store, auditService),
		Account:     handlers.NewAccountHandler(accountService, store, auditService),
		Category:    handlers.NewCategoryHandler(categoryService, reportService, auditService),
		Planning:    handlers.NewPlanningHandler(categoryService, reportService, auditService),
		Transaction: handlers.NewTransactionHandler(transactionService, auditService),
		Report:      handlers.NewReportHandler(accountService, categoryService, transactionService, reportService, store, period),
	}, tokens.Auth(), authLimit)

	return &testApp{DB: db, Router: router, Store: store}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// parseJSONArray parses a top-level JSON array response.
func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var result []interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// assertDecimal compares a JSON decimal (quoted string) with want.
func assertDecimal(t *testing.T, field string, got interface{}, want string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("%s: expected decimal string, got %T (%v)", field, got, got)
	}
	g, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("%s: invalid decimal %q: %v", field, s, err)
	}
	if !g.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, s)
	}
}

// today is the date transactions must carry to fall in the current month.
func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, username, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q,"password_confirm":%q,"first_name":"Test","last_name":"User"}`,
		username, email, password, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, login, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"login":%q,"password":%q}`, login, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAccount posts an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, nickname, balance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"nickname":%q,"bank":"NU","kind":"pf","balance":%q}`, nickname, balance)
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// createCategory posts a category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name string, essential bool) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"essential":%t}`, name, essential)
	rec := app.request("POST", "/api/v1/categories", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// createTransaction posts a transaction dated today and returns its ID.
func (app *testApp) createTransaction(t *testing.T, token, accountID, categoryID, tipo, valor, descricao string) string {
	t.Helper()
	body := fmt.Sprintf(`{"conta_id":%q,"categoria_id":%q,"tipo":%q,"valor":%q,"descricao":%q,"data":%q}`,
		accountID, categoryID, tipo, valor, descricao, today())
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// accountBalance fetches the account and returns its balance field.
func (app *testApp) accountBalance(t *testing.T, token, accountID string) interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["balance"]
}
