package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"limitbook/domain"
)

func newTestEngine(t *testing.T) *Engine {
	e := New("TEST", WithWorkerQueueSize(1024))
	t.Cleanup(e.Close)
	return e
}

func mustDrain(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

// Scenario 1: place + cancel.
func TestPlaceAndCancel(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	id, err := e.Post(ctx, domain.Order{Side: domain.Ask, Price: domain.NewPriceFromFloat(4.0), Quantity: 300})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	got, err := e.GetData(id)
	if err != nil {
		t.Fatalf("GetData before any matching activity: %v", err)
	}
	if got.Order.Side != domain.Ask || got.Order.Quantity != 300 || !got.Order.Price.Equal(domain.NewPriceFromFloat(4.0)) {
		t.Errorf("GetData returned %+v, want (Ask, 4.0, 300)", got)
	}

	cancelled, ok := e.Cancel(id)
	if !ok {
		t.Fatal("expected Cancel to find the order")
	}
	if cancelled.Order.Quantity != 300 {
		t.Errorf("cancelled order has wrong quantity: %+v", cancelled)
	}

	if _, err := e.GetData(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after cancel, got %v", err)
	}
}

// Scenario 2: partial cross.
func TestPartialCross(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	askID, err := e.Post(ctx, domain.Order{Side: domain.Ask, Price: domain.NewPriceFromFloat(4.0), Quantity: 300})
	if err != nil {
		t.Fatalf("Post ask: %v", err)
	}
	if _, err := e.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromFloat(4.0), Quantity: 299}); err != nil {
		t.Fatalf("Post bid: %v", err)
	}
	mustDrain(t, e)

	snap, err := e.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Bids) != 0 {
		t.Errorf("expected no resting bids, got %+v", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].ID != askID || snap.Asks[0].Order.Quantity != 1 {
		t.Fatalf("expected ask %v with quantity 1 remaining, got %+v", askID, snap.Asks)
	}

	if _, err := e.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromFloat(4.0), Quantity: 1}); err != nil {
		t.Fatalf("Post second bid: %v", err)
	}
	mustDrain(t, e)

	snap, err = e.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Asks) != 0 || len(snap.Bids) != 0 {
		t.Fatalf("expected an empty book after the final fill, got %+v", snap)
	}
	if _, err := e.GetData(askID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the fully satisfied ask to be gone, got %v", err)
	}
}

// Scenario 3: priority.
func TestPriority(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	top, err := e.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromFloat(4.0), Quantity: 299})
	if err != nil {
		t.Fatalf("Post top: %v", err)
	}
	low, err := e.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromFloat(4.0), Quantity: 1})
	if err != nil {
		t.Fatalf("Post low: %v", err)
	}
	if _, err := e.Post(ctx, domain.Order{Side: domain.Ask, Price: domain.NewPriceFromFloat(4.0), Quantity: 299}); err != nil {
		t.Fatalf("Post ask: %v", err)
	}
	mustDrain(t, e)

	if _, err := e.GetData(top); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the earlier bid (smallest id) to be fully matched and gone, got %v", err)
	}
	lowData, err := e.GetData(low)
	if err != nil {
		t.Fatalf("GetData(low): %v", err)
	}
	if lowData.Order.Quantity != 1 {
		t.Errorf("expected the later bid to remain untouched at quantity 1, got %+v", lowData)
	}
}

// Scenario 4: two-in-a-row.
func TestTwoInARow(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromFloat(4.0), Quantity: 299}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, err := e.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromFloat(4.0), Quantity: 1}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, err := e.Post(ctx, domain.Order{Side: domain.Ask, Price: domain.NewPriceFromFloat(4.0), Quantity: 300}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	mustDrain(t, e)

	snap, err := e.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Asks) != 0 || len(snap.Bids) != 0 {
		t.Fatalf("expected both sides empty, got %+v", snap)
	}
}

// Scenario 6: cancel racing ahead of a queued merge.
func TestCancelBeforeMergeRace(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	id, err := e.Post(ctx, domain.Order{Side: domain.Ask, Price: domain.NewPriceFromFloat(4.0), Quantity: 300})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	cancelled, ok := e.Cancel(id)
	if !ok {
		t.Fatal("expected the immediate cancel to win the race and find the order")
	}
	if cancelled.Order.Quantity != 300 {
		t.Errorf("cancelled order has wrong shape: %+v", cancelled)
	}

	mustDrain(t, e)

	if _, err := e.GetData(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the order to remain absent once its merge runs, got %v", err)
	}
}

// Scenario 7: teardown under heavy merge load completes within a bounded time.
func TestTeardownUnderLoadIsBounded(t *testing.T) {
	e := New("TEST")
	ctx := context.Background()

	for i := 0; i < 2000; i++ {
		side := domain.Ask
		if i%2 == 0 {
			side = domain.Bid
		}
		if _, err := e.Post(ctx, domain.Order{Side: side, Price: domain.NewPriceFromInt(int64(i % 50)), Quantity: 1}); err != nil {
			t.Fatalf("Post: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not complete within the bounded teardown window")
	}
}

func TestGetDataUnknownIDIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.GetData(domain.ID{9, 9, 9, 9}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for an id that was never posted, got %v", err)
	}
}

func TestCancelUnknownIDReportsAbsent(t *testing.T) {
	e := newTestEngine(t)
	if _, ok := e.Cancel(domain.ID{9, 9, 9, 9}); ok {
		t.Error("expected Cancel to report false for an id that was never posted")
	}
}
