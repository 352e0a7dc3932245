package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/client"
	"fintrack/internal/models"
)

// memoryBackend is an in-memory stand-in for the API.
type memoryBackend struct {
	txs []models.Transaction
	n   int
}

func (m *memoryBackend) List(context.Context) ([]models.Transaction, error) {
	return append([]models.Transaction{}, m.txs...), nil
}

func (m *memoryBackend) Create(_ context.Context, in client.TransactionInput) (*models.Transaction, error) {
	m.n++
	tx := models.Transaction{
		Base:        models.Base{ID: "tx-" + string(rune('0'+m.n))},
		Amount:      *in.Amount,
		Description: *in.Description,
		Type:        models.TransactionTypeExpense,
		Category:    models.DefaultCategory,
		Date:        time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}
	if in.Type != nil {
		tx.Type = models.TransactionType(*in.Type)
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	m.txs = append([]models.Transaction{tx}, m.txs...)
	return &tx, nil
}

func (m *memoryBackend) Update(_ context.Context, id string, in client.TransactionInput) (*models.Transaction, error) {
	for i := range m.txs {
		if m.txs[i].ID == id {
			if in.Category != nil {
				m.txs[i].Category = *in.Category
			}
			if in.Amount != nil {
				m.txs[i].Amount = *in.Amount
			}
			tx := m.txs[i]
			return &tx, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found"}
}

func (m *memoryBackend) Delete(_ context.Context, id string) (*models.Transaction, error) {
	for i := range m.txs {
		if m.txs[i].ID == id {
			tx := m.txs[i]
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return &tx, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found"}
}

func newTestApp() (*app, *memoryBackend, *bytes.Buffer) {
	backend := &memoryBackend{}
	out := &bytes.Buffer{}
	a := &app{
		ledger: cache.NewLedger(backend),
		out:    out,
		now:    func() time.Time { return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC) },
	}
	return a, backend, out
}

func TestParseForm(t *testing.T) {
	t.Run("only_given_flags", func(t *testing.T) {
		in, err := parseForm("edit", []string{"-category", "Food"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if in.Category == nil || *in.Category != "Food" {
			t.Errorf("expected category Food, got %v", in.Category)
		}
		if in.Amount != nil || in.Description != nil || in.Type != nil || in.Date != nil {
			t.Errorf("expected other fields unset, got %+v", in)
		}
	})

	t.Run("amount", func(t *testing.T) {
		in, err := parseForm("add", []string{"-amount", "12.50", "-description", "Lunch"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if in.Amount == nil || !in.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected amount 12.5, got %v", in.Amount)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		if _, err := parseForm("add", []string{"-amount", "lots"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown_flag", func(t *testing.T) {
		if _, err := parseForm("add", []string{"-colour", "red"}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("add_then_summary", func(t *testing.T) {
		a, _, out := newTestApp()

		if err := a.dispatch(ctx, []string{"add", "-amount", "50", "-description", "Salary", "-type", "income"}); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := a.dispatch(ctx, []string{"add", "-amount", "20", "-description", "Lunch", "-category", "Food"}); err != nil {
			t.Fatalf("add: %v", err)
		}
		out.Reset()

		if err := a.dispatch(ctx, []string{"summary"}); err != nil {
			t.Fatalf("summary: %v", err)
		}
		got := out.String()
		for _, want := range []string{"+30.00", "Top category  food", "Lunch", "up 100.0% vs last month"} {
			if !strings.Contains(got, want) {
				t.Errorf("summary output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("add_requires_amount_and_description", func(t *testing.T) {
		a, backend, _ := newTestApp()

		if err := a.dispatch(ctx, []string{"add", "-description", "Lunch"}); err == nil {
			t.Fatal("expected error")
		}
		if len(backend.txs) != 0 {
			t.Error("expected nothing to be sent")
		}
	})

	t.Run("edit_and_delete", func(t *testing.T) {
		a, backend, out := newTestApp()
		if err := a.dispatch(ctx, []string{"add", "-amount", "5", "-description", "Coffee"}); err != nil {
			t.Fatalf("add: %v", err)
		}
		id := backend.txs[0].ID

		if err := a.dispatch(ctx, []string{"edit", id, "-category", "Drinks"}); err != nil {
			t.Fatalf("edit: %v", err)
		}
		if backend.txs[0].Category != "Drinks" {
			t.Errorf("expected category Drinks, got %q", backend.txs[0].Category)
		}

		if err := a.dispatch(ctx, []string{"delete", id}); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(a.ledger.Transactions()) != 0 {
			t.Error("expected ledger to be empty")
		}

		out.Reset()
		if err := a.dispatch(ctx, []string{"list"}); err != nil {
			t.Fatalf("list: %v", err)
		}
		if strings.Contains(out.String(), "Coffee") {
			t.Error("expected deleted transaction to be gone")
		}
	})

	t.Run("delete_unknown", func(t *testing.T) {
		a, _, _ := newTestApp()
		if err := a.dispatch(ctx, []string{"delete", "missing"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown_command", func(t *testing.T) {
		a, _, _ := newTestApp()
		if err := a.dispatch(ctx, []string{"export"}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestRenderSummary_Empty(t *testing.T) {
	a, _, out := newTestApp()
	renderSummary(out, a.ledger.Summary(a.now()))

	got := out.String()
	for _, want := range []string{"Balance", "0.00", "no transactions yet", "no expenses yet"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"30", "+30.00"},
		{"-20.5", "-20.50"},
		{"0", "0.00"},
	}
	for _, tt := range tests {
		if got := formatMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("formatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
