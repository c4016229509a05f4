package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/middleware"
	"carteira/internal/models"
	"carteira/internal/services"
	"carteira/internal/validator"
)

const (
	testUserID     = "0191c1f0-0000-7000-8000-000000000001"
	testAccountID  = "0191c1f0-0000-7000-8000-0000000000a1"
	testCategoryID = "0191c1f0-0000-7000-8000-0000000000c1"
	testTxID       = "0191c1f0-0000-7000-8000-0000000000f1"
)

// --- mock user service ---

type mockUserService struct {
	createUserFn            func(username, email, password, passwordConfirm, firstName, lastName string) (*models.User, error)
	getUserByLoginFn        func(login string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	attemptLoginFn          func(login, password string) (*models.User, error)
	updateUserFn            func(userID string, fields services.UserUpdateFields) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
}

func (m *mockUserService) CreateUser(username, email, password, passwordConfirm, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(username, email, password, passwordConfirm, firstName, lastName)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Username: username, Email: email, IsActive: true}, nil
}

func (m *mockUserService) GetUserByLogin(login string) (*models.User, error) {
	if m.getUserByLoginFn != nil {
		return m.getUserByLoginFn(login)
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, Username: "maria", IsActive: true}, nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return true }

func (m *mockUserService) AttemptLogin(login, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(login, password)
	}
	return nil, apperrors.ErrInvalidCredentials
}

func (m *mockUserService) UpdateUser(userID string, fields services.UserUpdateFields) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(userID, fields)
	}
	return &models.User{Base: models.Base{ID: userID}, Username: "maria", IsActive: true}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- mock audit service ---

type mockAuditService struct {
	actions []string
	changes []map[string]any
}

func (m *mockAuditService) Log(_, action, _, _, _ string, changes map[string]any) {
	m.actions = append(m.actions, action)
	m.changes = append(m.changes, changes)
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func newTestTokens() *middleware.TokenManager {
	return middleware.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.POST("/auth/logout", injectUserID(testUserID), handler.Logout)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doForm(r *gin.Engine, method, path, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertErrorMessage(t *testing.T, result map[string]interface{}, message string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["message"] != message {
		t.Errorf("expected error message %q, got %q", message, errObj["message"])
	}
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with tokens on success", func(t *testing.T) {
		var storedHash string
		userSvc := &mockUserService{
			storeRefreshTokenHashFn: func(_, hash string) error {
				storedHash = hash
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens(), audit))

		rec := doRequest(r, "POST", "/auth/register",
			`{"username":"maria","email":"maria@example.com","password":"segredo123","password_confirm":"segredo123"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		refresh, _ := result["refresh_token"].(string)
		if result["access_token"] == "" || refresh == "" {
			t.Fatal("expected both tokens")
		}
		if storedHash != middleware.HashToken(refresh) {
			t.Error("expected refresh token hash to be stored")
		}
		if result["expires_in"] != float64(900) {
			t.Errorf("expected expires_in 900, got %v", result["expires_in"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "REGISTER" {
			t.Errorf("expected REGISTER audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 when email is missing", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokens(), &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/register", `{"username":"maria","password":"x"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes service errors through", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _, _, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrPasswordMismatch
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens(), &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/register",
			`{"username":"maria","email":"maria@example.com","password":"a","password_confirm":"b"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "PASSWORD_MISMATCH")
		assertErrorMessage(t, result, "As senhas não coincidem.")
	})

	t.Run("accepts form posts", func(t *testing.T) {
		var gotUsername string
		userSvc := &mockUserService{
			createUserFn: func(username, email, _, _, _, _ string) (*models.User, error) {
				gotUsername = username
				return &models.User{Base: models.Base{ID: testUserID}, Username: username, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens(), &mockAuditService{}))

		rec := doForm(r, "POST", "/auth/register",
			"username=joao&email=joao%40example.com&password=abc&password_confirm=abc")

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUsername != "joao" {
			t.Errorf("expected joao, got %q", gotUsername)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(login, password string) (*models.User, error) {
				if login != "maria" || password != "segredo123" {
					t.Errorf("unexpected credentials %q/%q", login, password)
				}
				return &models.User{Base: models.Base{ID: testUserID}, Username: "maria", IsActive: true}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens(), &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"login":"maria","password":"segredo123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["username"] != "maria" {
			t.Errorf("expected maria, got %v", user["username"])
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokens(), &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"login":"maria","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on missing password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokens(), &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"login":"maria"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	tokens := newTestTokens()
	user := &models.User{Base: models.Base{ID: testUserID}, Username: "maria", IsActive: true}
	refresh, err := tokens.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to sign refresh token: %v", err)
	}

	t.Run("returns a new pair for the stored token", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken(refresh), nil },
			getUserByIDFn:         func(string) (*models.User, error) { return user, nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tokens, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 401 when the token was revoked", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, tokens, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})

	t.Run("returns 401 for an access token", func(t *testing.T) {
		access, _ := tokens.GenerateAccessToken(user)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken(access), nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tokens, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+access+`"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 401 for inactive users", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken(refresh), nil },
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, IsActive: false}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tokens, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	cleared := false
	userSvc := &mockUserService{
		storeRefreshTokenHashFn: func(userID, hash string) error {
			cleared = userID == testUserID && hash == ""
			return nil
		},
	}
	r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokens(), &mockAuditService{}))

	rec := doRequest(r, "POST", "/auth/logout", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !cleared {
		t.Error("expected the stored refresh hash to be cleared")
	}
	if parseJSON(t, rec)["message"] != "Sessão encerrada." {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
