package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"audycon/internal/config"
	"audycon/internal/handlers"
	"audycon/internal/logger"
	"audycon/internal/middleware"
	"audycon/internal/models"
	"audycon/internal/services"
	"audycon/internal/uuid"
	"audycon/internal/validator"
)

const testJWTSecret = "integration-test-secret"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Identity *fakeIdentity
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
	os.Setenv("JWT_SECRET", testJWTSecret)
	if _, err := config.Load(); err != nil {
		panic(err)
	}
}

// fakeIdentity stands in for the external Identity Store. CreateUser hands
// out fresh ids, SignIn issues tokens signed with the shared secret, and
// DeleteCredential records what was removed.
type fakeIdentity struct {
	users     map[string]string // email -> account id
	deleted   []string
	deleteErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: make(map[string]string)}
}

func (f *fakeIdentity) CreateUser(email, password string) (string, error) {
	id := uuid.New()
	f.users[email] = id
	return id, nil
}

func (f *fakeIdentity) DeleteCredential(accountID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, accountID)
	return nil
}

func (f *fakeIdentity) SignIn(email, password string) (string, error) {
	id, ok := f.users[email]
	if !ok {
		return "", fmt.Errorf("unknown user %s", email)
	}
	return signTestToken(id), nil
}

// signTestToken issues a bearer token for the given account id, the way
// the Identity Store would.
func signTestToken(accountID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		panic(err)
	}
	return token
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.AuditEntry{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	identityStore := newFakeIdentity()

	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db, identityStore, auditService)

	authHandler := handlers.NewAuthHandler(accountService, identityStore)
	adminHandler := handlers.NewAdminHandler(accountService)
	auditHandler := handlers.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	v1.POST("/admin/users/delete", middleware.OptionalAuth(), adminHandler.DeleteUser)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly(accountService))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id", adminHandler.EditUser)
	admin.PUT("/users/:id/role", adminHandler.ChangeRole)
	admin.POST("/users/:id/status", adminHandler.ToggleStatus)
	admin.GET("/users/:id/logs", auditHandler.UserLogs)
	admin.GET("/logs", auditHandler.ListLogs)

	return &testApp{DB: db, Router: router, Identity: identityStore}
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

// errorCode extracts the error code from an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// signupUser registers a new account through the API and returns its id
// and a bearer token for it.
func (app *testApp) signupUser(t *testing.T, email, firstName, lastName string) (id, token string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123","first_name":%q,"last_name":%q}`,
		email, firstName, lastName)
	rec := app.request("POST", "/api/v1/auth/signup", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	id = account["id"].(string)
	return id, signTestToken(id)
}

// createAdmin seeds an active administrator directly in the store and
// returns its id and a bearer token.
func (app *testApp) createAdmin(t *testing.T, email string) (id, token string) {
	t.Helper()
	account := &models.Account{
		Email:     email,
		FirstName: "Admin",
		LastName:  "User",
		Role:      models.RoleAdmin,
		Status:    models.StatusActive,
	}
	if err := app.DB.Create(account).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return account.ID, signTestToken(account.ID)
}
