// internal/router/router_test.go
package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nexpoint/nexpoint-backend/internal/config"
	"github.com/nexpoint/nexpoint-backend/internal/models"
	"github.com/nexpoint/nexpoint-backend/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.DispatchService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.InvoiceRecord{}))

	require.NoError(t, db.Create(&models.Product{
		ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Nicotine Pouches",
		Strength: "6mg", Stock: 100, MultipleOf: 5,
	}).Error)

	cfg := &config.Config{
		Environment: "development",
		JWT:         config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
		Admin:       config.AdminConfig{Username: "admin", Password: "letmein"},
		Email: config.EmailConfig{
			SMTPPort:      "587",
			FromEmail:     "noreply@nexpointdistributions.com",
			FromName:      "NEXPOINT",
			OperatorEmail: "nexpointdistributions@outlook.com",
		},
		Invoice: config.InvoiceConfig{Dir: t.TempDir()},
	}

	engine, dispatcher, err := Initialize(db, cfg)
	require.NoError(t, err)

	return engine, dispatcher
}

func doJSON(engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// One flow through the public and admin surface. The subtests share a router
// and run in order: later steps depend on the order submitted earlier.
func TestAPIFlow(t *testing.T) {
	engine, dispatcher := newTestRouter(t)

	var token string
	var orderNumber string

	t.Run("health", func(t *testing.T) {
		w := doJSON(engine, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("list products", func(t *testing.T) {
		w := doJSON(engine, http.MethodGet, "/v1/products", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Zyn Cool Mint")
		assert.Contains(t, w.Body.String(), "In Stock")
	})

	t.Run("get product", func(t *testing.T) {
		w := doJSON(engine, http.MethodGet, "/v1/products/euro-0", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		missing := doJSON(engine, http.MethodGet, "/v1/products/missing-9", "", nil)
		assert.Equal(t, http.StatusNotFound, missing.Code)
	})

	t.Run("submit order", func(t *testing.T) {
		w := doJSON(engine, http.MethodPost, "/v1/orders", "", gin.H{
			"customerName": "Jane Smith",
			"storeName":    "Corner Vape",
			"email":        "jane@cornervape.com",
			"phone":        "555-0142",
			"items":        []gin.H{{"id": "euro-0", "quantity": 10}},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Message     string `json:"message"`
				OrderNumber string `json:"orderNumber"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Order created successfully!", resp.Data.Message)
		require.True(t, strings.HasPrefix(resp.Data.OrderNumber, "ORD-"))
		orderNumber = resp.Data.OrderNumber

		// Let the fire-and-forget invoice dispatch finish before the admin
		// surface inspects its record.
		dispatcher.Wait()
	})

	t.Run("submit order rejects bad quantity", func(t *testing.T) {
		w := doJSON(engine, http.MethodPost, "/v1/orders", "", gin.H{
			"customerName": "Jane Smith",
			"storeName":    "Corner Vape",
			"email":        "jane@cornervape.com",
			"phone":        "555-0142",
			"items":        []gin.H{{"id": "euro-0", "quantity": 7}},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	})

	t.Run("admin requires token", func(t *testing.T) {
		w := doJSON(engine, http.MethodGet, "/v1/admin/orders", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login", func(t *testing.T) {
		bad := doJSON(engine, http.MethodPost, "/v1/auth/login", "", gin.H{
			"username": "admin", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, bad.Code)

		w := doJSON(engine, http.MethodPost, "/v1/auth/login", "", gin.H{
			"username": "admin", "password": "letmein",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Data.Token)
		token = resp.Data.Token
	})

	t.Run("admin lists orders", func(t *testing.T) {
		w := doJSON(engine, http.MethodGet, "/v1/admin/orders", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
		assert.Contains(t, w.Body.String(), orderNumber)
	})

	t.Run("invoice status and download", func(t *testing.T) {
		status := doJSON(engine, http.MethodGet, "/v1/admin/invoices/"+orderNumber+"/status", token, nil)
		require.Equal(t, http.StatusOK, status.Code)
		assert.Contains(t, status.Body.String(), `"skipped"`)

		download := doJSON(engine, http.MethodGet, "/v1/admin/invoices/"+orderNumber, token, nil)
		require.Equal(t, http.StatusOK, download.Code)
		assert.Equal(t, "application/pdf", download.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(download.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("admin adjusts stock through ledger", func(t *testing.T) {
		w := doJSON(engine, http.MethodPut, "/v1/admin/products/euro-0/stock", token, gin.H{
			"quantity": 95,
		})
		require.Equal(t, http.StatusOK, w.Code)

		// 100 seeded minus the 10-unit order leaves 90; a 95-unit reduction
		// is clamped to what remains.
		var resp struct {
			Data struct {
				Applied struct {
					Requested int `json:"requested"`
					Applied   int `json:"applied"`
				} `json:"applied"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 95, resp.Data.Applied.Requested)
		assert.Equal(t, 90, resp.Data.Applied.Applied)

		product := doJSON(engine, http.MethodGet, "/v1/products/euro-0", "", nil)
		assert.Contains(t, product.Body.String(), "Out of Stock")
	})
}
