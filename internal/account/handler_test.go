package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/evaluations"
	"engineo-backend/internal/products"
)

func newClaimRouter(t *testing.T, productRepo products.Repo, evalRepo evaluations.Repo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHandler(NewService(productRepo, evalRepo))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func TestClaimGuestMigratesData(t *testing.T) {
	productRepo := products.NewMemoryRepo()
	evalRepo := evaluations.NewMemoryRepo()
	router := newClaimRouter(t, productRepo, evalRepo)

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	product := products.Product{
		ID:        "prod-1",
		UserID:    guestUserID,
		Name:      "Acme Widget",
		CreatedAt: time.Now().UTC(),
	}
	if err := productRepo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	eval := evaluations.Evaluation{
		ProductID:   product.ID,
		UserID:      guestUserID,
		EvaluatedAt: time.Now().UTC(),
	}
	if err := evalRepo.Upsert(context.Background(), eval); err != nil {
		t.Fatalf("create evaluation: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var result ClaimResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.MigratedProducts != 1 || result.MigratedEvaluations != 1 {
		t.Fatalf("unexpected claim result: %+v", result)
	}

	owned, err := productRepo.ListProducts(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("expected 1 migrated product, got %d", len(owned))
	}

	migrated, err := evalRepo.GetByProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if migrated.UserID != "user-1" {
		t.Fatalf("expected evaluation owner user-1, got %q", migrated.UserID)
	}
}

func TestClaimGuestIdempotentAndIsolated(t *testing.T) {
	productRepo := products.NewMemoryRepo()
	evalRepo := evaluations.NewMemoryRepo()
	router := newClaimRouter(t, productRepo, evalRepo)

	guestID := "22222222-2222-2222-2222-222222222222"
	guestUserID := "guest:" + guestID

	product := products.Product{
		ID:        "prod-2",
		UserID:    guestUserID,
		Name:      "Acme Gadget",
		CreatedAt: time.Now().UTC(),
	}
	if err := productRepo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req2.Header.Set("X-Guest-Id", guestID)
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200 on repeat call, got %d", resp2.Code)
	}
	var second ClaimResult
	if err := json.Unmarshal(resp2.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if second.MigratedProducts != 0 {
		t.Fatalf("expected no products on repeat claim, got %d", second.MigratedProducts)
	}

	other, err := productRepo.ListProducts(context.Background(), "user-2", 10, 0)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no products for other user, got %d", len(other))
	}
}

func TestClaimGuestRejectsGuestCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(NewService(products.NewMemoryRepo(), evaluations.NewMemoryRepo()))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "guest:33333333-3333-3333-3333-333333333333")
		c.Set("isGuest", true)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", "33333333-3333-3333-3333-333333333333")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestClaimGuestValidatesHeader(t *testing.T) {
	productRepo := products.NewMemoryRepo()
	router := newClaimRouter(t, productRepo, evaluations.NewMemoryRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing header, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req2.Header.Set("X-Guest-Id", "not-a-uuid")
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid header, got %d", resp2.Code)
	}
}
