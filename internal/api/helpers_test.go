package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const testBaseURL = "http://testserver"

// testAPI is a fully wired router over an in-memory database.
type testAPI struct {
	router   *gin.Engine
	db       *gorm.DB
	services Services
	mediaDir string
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Setup())

	db := testhelpers.SetupSQLite(t)
	cfg := &config.Config{
		BaseURL:   testBaseURL,
		JWTSecret: "test-secret",
		PageSize:  6,
	}
	mediaDir := t.TempDir()
	services := NewServices(db, cfg, service.NewLocalImageStore(mediaDir, testBaseURL+"/media"))

	router := gin.New()
	RegisterRoutes(router, db, services, nil, cfg)

	return &testAPI{router: router, db: db, services: services, mediaDir: mediaDir}
}

func (a *testAPI) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := a.services.Auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// do sends body as JSON with an optional token and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
