package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-list/internal/auth"
	"shopping-list/internal/config"
	"shopping-list/internal/lists"
	"shopping-list/internal/logging"
	"shopping-list/internal/models"
	"shopping-list/internal/store"
)

func newRepo(t *testing.T, initialize bool) *lists.Repository {
	t.Helper()
	s := store.NewMemoryStore()
	repo := lists.New(func(ctx context.Context) (store.Store, error) { return s, nil }, logging.Discard(), time.Second)
	if initialize {
		require.NoError(t, repo.Initialize(context.Background()))
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newRouter(repo ListService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	lh := NewListHandler(repo, logging.Discard())
	ih := NewItemHandler(repo, logging.Discard())
	mh := NewMemoryHandler(repo)

	r.GET("/lists", lh.GetLists)
	r.POST("/lists", lh.CreateList)
	r.GET("/lists/:id", lh.GetList)
	r.DELETE("/lists/:id", lh.DeleteList)
	r.GET("/lists/:id/items", ih.GetItems)
	r.POST("/lists/:id/items", ih.CreateItem)
	r.PATCH("/lists/:id/items/:itemId", ih.UpdateItem)
	r.DELETE("/lists/:id/items/:itemId", ih.DeleteItem)
	r.GET("/memory", mh.GetMemory)
	r.GET("/memory/common", mh.GetCommonItems)
	r.GET("/memory/stats", mh.GetMemoryStats)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListHandler_CreateGetDelete(t *testing.T) {
	repo := newRepo(t, true)
	r := newRouter(repo)

	w := do(t, r, http.MethodPost, "/lists", gin.H{"name": "Groceries", "priority": "High"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.ShoppingList](t, w)
	assert.Equal(t, "Groceries", created.Name)
	assert.Equal(t, models.PriorityHigh, created.Priority)
	assert.NotEmpty(t, created.ID)

	w = do(t, r, http.MethodGet, "/lists/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[models.ShoppingList](t, w).ID)

	w = do(t, r, http.MethodGet, "/lists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decode[struct {
		Lists []models.ListSummary `json:"lists"`
	}](t, w)
	require.Len(t, summaries.Lists, 1)
	assert.Equal(t, "Groceries", summaries.Lists[0].Name)

	w = do(t, r, http.MethodDelete, "/lists/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.Lists())

	w = do(t, r, http.MethodDelete, "/lists/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "delete is idempotent")
}

func TestListHandler_Rejects(t *testing.T) {
	r := newRouter(newRepo(t, true))

	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"missing name", gin.H{}, http.StatusBadRequest},
		{"unknown priority", gin.H{"name": "x", "priority": "Urgent"}, http.StatusBadRequest},
		{"blank name", gin.H{"name": "   "}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/lists", tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/lists/nope", nil).Code)
}

func TestItemHandler_Lifecycle(t *testing.T) {
	repo := newRepo(t, true)
	r := newRouter(repo)

	list, err := repo.AddList(context.Background(), "Groceries", models.PriorityNone)
	require.NoError(t, err)
	base := "/lists/" + list.ID + "/items"

	w := do(t, r, http.MethodPost, base, gin.H{"name": "Milk", "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[models.ShoppingItem](t, w)
	assert.Equal(t, "Milk", item.Name)
	assert.Equal(t, 2, item.Quantity)
	assert.False(t, item.IsChecked)

	w = do(t, r, http.MethodPatch, base+"/"+item.ID, gin.H{"isChecked": true})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.ShoppingItem](t, w)
	assert.True(t, updated.IsChecked)
	assert.Equal(t, "Milk", updated.Name)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[struct {
		Items []models.ShoppingItem `json:"items"`
	}](t, w)
	require.Len(t, items.Items, 1)
	assert.True(t, items.Items[0].IsChecked)

	w = do(t, r, http.MethodDelete, base+"/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err := repo.GetList(list.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestItemHandler_Errors(t *testing.T) {
	repo := newRepo(t, true)
	r := newRouter(repo)

	list, err := repo.AddList(context.Background(), "Groceries", models.PriorityNone)
	require.NoError(t, err)
	base := "/lists/" + list.ID + "/items"

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base, gin.H{"quantity": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base, gin.H{"name": "Milk", "quantity": 0}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/lists/nope/items", gin.H{"name": "Milk"}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPatch, base+"/nope", gin.H{"isChecked": true}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/lists/nope/items/x", nil).Code)
}

func TestHandlers_StoreUnavailable(t *testing.T) {
	r := newRouter(newRepo(t, false))

	w := do(t, r, http.MethodPost, "/lists", gin.H{"name": "Groceries"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Storage is unavailable")
}

func TestMemoryHandler(t *testing.T) {
	repo := newRepo(t, true)
	r := newRouter(repo)
	ctx := context.Background()

	for _, name := range []string{"Week 1", "Week 2"} {
		list, err := repo.AddList(ctx, name, models.PriorityNone)
		require.NoError(t, err)
		_, err = repo.AddItem(ctx, list.ID, models.CreateItemRequest{Name: "Milk"})
		require.NoError(t, err)
	}

	w := do(t, r, http.MethodGet, "/memory?q=mi&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recalled := decode[struct {
		Items []struct {
			Name      string `json:"name"`
			Frequency int    `json:"frequency"`
		} `json:"items"`
	}](t, w)
	require.Len(t, recalled.Items, 1)
	assert.Equal(t, "Milk", recalled.Items[0].Name)
	assert.Equal(t, 2, recalled.Items[0].Frequency)

	w = do(t, r, http.MethodGet, "/memory?limit=abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/memory/common", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bread")

	w = do(t, r, http.MethodGet, "/memory/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.EqualValues(t, 2, stats["totalLists"])
	assert.EqualValues(t, 2, stats["totalItems"])
	assert.EqualValues(t, 1, stats["distinctItems"])
}

func TestAuthHandler_IssueToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := auth.HashPassphrase("open sesame")
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager(config.JWTConfig{Secret: "s3cret", ExpiresIn: "1h"})
	h := NewAuthHandler(jwtManager, hash, logging.Discard())
	r := gin.New()
	r.POST("/token", h.IssueToken)

	w := do(t, r, http.MethodPost, "/token", gin.H{"passphrase": "open sesame", "device": "phone"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.TokenResponse](t, w)
	claims, err := jwtManager.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "phone", claims.Device)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/token", gin.H{"passphrase": "wrong"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/token", gin.H{}).Code)
}
