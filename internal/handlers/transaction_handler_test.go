package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn func(ctx context.Context, fields models.TransactionPatch) (*models.Transaction, error)
	listTransactionsFn  func(ctx context.Context) ([]models.Transaction, error)
	getTransactionFn    func(ctx context.Context, id string) (*models.Transaction, error)
	updateTransactionFn func(ctx context.Context, id string, fields models.TransactionPatch) (*models.Transaction, error)
	deleteTransactionFn func(ctx context.Context, id string) (*models.Transaction, error)
	getSummaryFn        func(ctx context.Context) (*analytics.Summary, error)
	pingFn              func(ctx context.Context) error
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, fields models.TransactionPatch) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(ctx, fields)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(ctx, id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, id string, fields models.TransactionPatch) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(ctx, id, fields)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetSummary(ctx context.Context) (*analytics.Summary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(ctx)
	}
	s := analytics.Summarize(nil, time.Now())
	return &s, nil
}

func (m *mockTransactionService) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

const testID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"

func setupTransactionRouter(svc services.TransactionServicer, legacy bool) *gin.Engine {
	handler := NewTransactionHandler(svc)
	r := gin.New()
	r.Use(middleware.ErrorHandler(legacy))
	r.GET("/transactions", handler.ListTransactions)
	r.POST("/transactions", handler.CreateTransaction)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.PUT("/transactions/:id", handler.UpdateTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	r.GET("/summary", handler.GetSummary)
	r.GET("/api/health", NewHealthHandler(svc).Health)
	return r
}

func sampleTransaction() *models.Transaction {
	return &models.Transaction{
		Base:        models.Base{ID: testID},
		Amount:      decimal.RequireFromString("12.5"),
		Description: "Lunch",
		Type:        models.TransactionTypeExpense,
		Category:    "Food",
		Date:        time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("returns 200 with bare array", func(t *testing.T) {
		svc := &mockTransactionService{
			listTransactionsFn: func(context.Context) ([]models.Transaction, error) {
				return []models.Transaction{*sampleTransaction()}, nil
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		items := parseJSONArray(t, rec)
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0]["id"] != testID {
			t.Errorf("expected id %q, got %v", testID, items[0]["id"])
		}
		if items[0]["amount"].(float64) != 12.5 {
			t.Errorf("expected numeric amount 12.5, got %v", items[0]["amount"])
		}
	})

	t.Run("returns empty array", func(t *testing.T) {
		r := setupTransactionRouter(&mockTransactionService{}, false)

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := rec.Body.String(); body != "[]" {
			t.Errorf("expected [], got %s", body)
		}
	})

	t.Run("returns 503 when store is down", func(t *testing.T) {
		svc := &mockTransactionService{
			listTransactionsFn: func(context.Context) ([]models.Transaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, errors.New("connection refused"))
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORE_UNAVAILABLE")
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got models.TransactionPatch
		svc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, fields models.TransactionPatch) (*models.Transaction, error) {
				got = fields
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "POST", "/transactions",
			`{"amount":12.5,"description":"Lunch","type":"expense","category":"Food","date":"2024-05-10"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected amount 12.5, got %v", got.Amount)
		}
		if got.Date == nil || got.Date.Day() != 10 {
			t.Errorf("expected parsed date, got %v", got.Date)
		}
		if parseJSON(t, rec)["id"] != testID {
			t.Error("expected created record in body")
		}
	})

	t.Run("accepts amount as string", func(t *testing.T) {
		var got models.TransactionPatch
		svc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, fields models.TransactionPatch) (*models.Transaction, error) {
				got = fields
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "POST", "/transactions", `{"amount":"20.00","description":"Books"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.NewFromInt(20)) {
			t.Errorf("expected amount 20, got %v", got.Amount)
		}
		if got.Type != nil || got.Category != nil {
			t.Error("expected omitted fields to stay unset")
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupTransactionRouter(&mockTransactionService{}, false)

		rec := doRequest(r, "POST", "/transactions", `{"amount":5,"description":"Gift","type":"transfer"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid date", func(t *testing.T) {
		r := setupTransactionRouter(&mockTransactionService{}, false)

		rec := doRequest(r, "POST", "/transactions", `{"amount":5,"description":"Gift","date":"soon"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed JSON", func(t *testing.T) {
		r := setupTransactionRouter(&mockTransactionService{}, false)

		rec := doRequest(r, "POST", "/transactions", `{invalid`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("propagates service validation error", func(t *testing.T) {
		svc := &mockTransactionService{
			createTransactionFn: func(context.Context, models.TransactionPatch) (*models.Transaction, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "POST", "/transactions", `{"description":"Lunch"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("legacy mode returns 500 text", func(t *testing.T) {
		svc := &mockTransactionService{
			createTransactionFn: func(context.Context, models.TransactionPatch) (*models.Transaction, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
			},
		}
		r := setupTransactionRouter(svc, true)

		rec := doRequest(r, "POST", "/transactions", `{"description":"Lunch"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := rec.Body.String(); body != "amount is required" {
			t.Errorf("expected plain-text message, got %q", body)
		}
	})
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionFn: func(_ context.Context, id string) (*models.Transaction, error) {
				if id != testID {
					t.Errorf("expected id %q, got %q", testID, id)
				}
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "GET", "/transactions/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionFn: func(context.Context, string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "GET", "/transactions/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("passes only supplied fields", func(t *testing.T) {
		var got models.TransactionPatch
		svc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, _ string, fields models.TransactionPatch) (*models.Transaction, error) {
				got = fields
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "PUT", "/transactions/"+testID, `{"category":"Dining"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Category == nil || *got.Category != "Dining" {
			t.Errorf("expected category Dining, got %v", got.Category)
		}
		if got.Amount != nil || got.Description != nil || got.Type != nil || got.Date != nil {
			t.Errorf("expected other fields unset, got %+v", got)
		}
	})

	t.Run("returns 404 on unknown id", func(t *testing.T) {
		svc := &mockTransactionService{
			updateTransactionFn: func(context.Context, string, models.TransactionPatch) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "PUT", "/transactions/"+testID, `{"amount":1}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("legacy mode collapses not found", func(t *testing.T) {
		svc := &mockTransactionService{
			updateTransactionFn: func(context.Context, string, models.TransactionPatch) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(svc, true)

		rec := doRequest(r, "PUT", "/transactions/"+testID, `{"amount":1}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns deleted record", func(t *testing.T) {
		svc := &mockTransactionService{
			deleteTransactionFn: func(context.Context, string) (*models.Transaction, error) {
				return sampleTransaction(), nil
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "DELETE", "/transactions/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["description"] != "Lunch" {
			t.Error("expected deleted record in body")
		}
	})

	t.Run("returns 404 on unknown id", func(t *testing.T) {
		svc := &mockTransactionService{
			deleteTransactionFn: func(context.Context, string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "DELETE", "/transactions/"+testID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetSummary(t *testing.T) {
	svc := &mockTransactionService{
		getSummaryFn: func(context.Context) (*analytics.Summary, error) {
			s := analytics.Summarize([]models.Transaction{*sampleTransaction()}, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
			return &s, nil
		},
	}
	r := setupTransactionRouter(svc, false)

	rec := doRequest(r, "GET", "/summary", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["top_category"] != "food" {
		t.Errorf("expected top category food, got %v", result["top_category"])
	}
	if result["expense_sum"].(float64) != 12.5 {
		t.Errorf("expected expense_sum 12.5, got %v", result["expense_sum"])
	}
}

func TestHealthHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := setupTransactionRouter(&mockTransactionService{}, false)

		rec := doRequest(r, "GET", "/api/health", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("store unreachable", func(t *testing.T) {
		svc := &mockTransactionService{
			pingFn: func(context.Context) error { return apperrors.ErrStoreUnavailable },
		}
		r := setupTransactionRouter(svc, false)

		rec := doRequest(r, "GET", "/api/health", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
