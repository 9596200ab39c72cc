// Package testutil carries shared helpers for the ledger test suites:
// sqlmock-backed GORM handles, gin test contexts and small assertion
// utilities for asynchronous behavior.
package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB couples a GORM handle to a sqlmock connection so repository
// tests can script exact SQL expectations without a real database.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens GORM over sqlmock. The caller owns Close.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "failed to open GORM connection")

	return &MockDB{
		DB:    gormDB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// Close releases the underlying sqlmock connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet fails the test if any scripted query never ran.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}

// TestContext bundles a gin context with the recorder capturing its output.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext builds a gin test context carrying a plain GET request.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	return &TestContext{
		Context:  c,
		Recorder: w,
		Engine:   engine,
	}
}

// SetRequestID stores a request id in the gin context, the way the
// request id middleware would.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set("X-Request-ID", id)
}

// SetEmployeeID stores an employee id in the gin context, the way the
// employee identity middleware would.
func (tc *TestContext) SetEmployeeID(id string) {
	tc.Context.Set("employee_id", id)
}

// SetHeader sets a header on the underlying request.
func (tc *TestContext) SetHeader(key, value string) {
	tc.Context.Request.Header.Set(key, value)
}

// ResponseBody returns what the handler wrote.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the recorded HTTP status.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID derives a stable UUID from seed, so fixtures can share
// ids across test runs and files.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestEmployeeID is the clerk id used by fixtures that do not care
// which employee acted.
func TestEmployeeID() uuid.UUID {
	return NewTestUUID("test-employee")
}

// ContextWithTimeout builds a deadline-bound context for tests that
// exercise blocking operations.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

func pollUntil(condition func() bool, deadline time.Time, interval time.Duration) bool {
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// AssertEventually polls condition until it holds or timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	if !pollUntil(condition, time.Now().Add(timeout), interval) {
		t.Fatalf("condition not met within %v: %v", timeout, msgAndArgs)
	}
}

// AssertNever fails if condition becomes true at any point during duration.
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	if pollUntil(condition, time.Now().Add(duration), interval) {
		t.Fatalf("condition unexpectedly became true: %v", msgAndArgs)
	}
}
