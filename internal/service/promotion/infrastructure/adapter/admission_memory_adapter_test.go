package adapter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"promo/internal/service/promotion/domain/port"
)

func TestAdmissionMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	const promoID = "promo-1"

	t.Run("concurrent TryAdmit of one user succeeds exactly once", func(t *testing.T) {
		store := NewAdmissionMemoryAdapter()

		const goroutines = 100
		var wg sync.WaitGroup
		results := make(chan bool, goroutines)

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.TryAdmit(ctx, promoID, "user-1")
				if err != nil {
					t.Error(err)
					return
				}
				results <- ok
			}()
		}
		wg.Wait()
		close(results)

		admitted := 0
		for ok := range results {
			if ok {
				admitted++
			}
		}
		if admitted != 1 {
			t.Errorf("expected exactly 1 successful admit, got %d", admitted)
		}
		if count, _ := store.AdmittedCount(ctx, promoID); count != 1 {
			t.Errorf("expected admitted count 1, got %d", count)
		}
	})

	t.Run("queue is FIFO", func(t *testing.T) {
		store := NewAdmissionMemoryAdapter()

		for i := 0; i < 10; i++ {
			err := store.Enqueue(ctx, promoID, port.AdmissionEntry{
				UserID:   fmt.Sprintf("user-%d", i),
				JoinedAt: time.Now(),
			})
			if err != nil {
				t.Fatal(err)
			}
		}

		for i := 0; i < 10; i++ {
			entry, err := store.Dequeue(ctx, promoID)
			if err != nil {
				t.Fatal(err)
			}
			if entry == nil {
				t.Fatalf("queue empty after %d dequeues, want 10", i)
			}
			if want := fmt.Sprintf("user-%d", i); entry.UserID != want {
				t.Errorf("dequeue %d returned %s, want %s", i, entry.UserID, want)
			}
		}

		if entry, err := store.Dequeue(ctx, promoID); err != nil || entry != nil {
			t.Errorf("drained queue must report empty, got (%v, %v)", entry, err)
		}
	})

	t.Run("withdraw reopens admission and tolerates absent users", func(t *testing.T) {
		store := NewAdmissionMemoryAdapter()

		if err := store.Withdraw(ctx, promoID, "ghost"); err != nil {
			t.Fatalf("withdraw of an absent user must be safe, got %v", err)
		}

		store.TryAdmit(ctx, promoID, "user-1")
		store.Withdraw(ctx, promoID, "user-1")
		ok, _ := store.TryAdmit(ctx, promoID, "user-1")
		if !ok {
			t.Error("user must be admittable again after withdraw")
		}
	})

	t.Run("winner sequence is strictly increasing under concurrency", func(t *testing.T) {
		store := NewAdmissionMemoryAdapter()

		const increments = 200
		var wg sync.WaitGroup
		seen := make(chan int64, increments)

		for i := 0; i < increments; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seq, err := store.IncrementWinnerSequence(ctx, promoID)
				if err != nil {
					t.Error(err)
					return
				}
				seen <- seq
			}()
		}
		wg.Wait()
		close(seen)

		unique := make(map[int64]bool)
		for seq := range seen {
			if unique[seq] {
				t.Fatalf("sequence value %d issued twice", seq)
			}
			unique[seq] = true
		}
		if len(unique) != increments {
			t.Errorf("expected %d unique values, got %d", increments, len(unique))
		}
		if current, _ := store.WinnerSequence(ctx, promoID); current != increments {
			t.Errorf("expected final sequence %d, got %d", increments, current)
		}
	})

	t.Run("promotions are isolated", func(t *testing.T) {
		store := NewAdmissionMemoryAdapter()
		store.TryAdmit(ctx, "promo-a", "user-1")
		store.Enqueue(ctx, "promo-a", port.AdmissionEntry{UserID: "user-1"})

		if count, _ := store.AdmittedCount(ctx, "promo-b"); count != 0 {
			t.Errorf("expected promo-b untouched, admitted %d", count)
		}
		if length, _ := store.QueueLength(ctx, "promo-b"); length != 0 {
			t.Errorf("expected promo-b queue empty, got %d", length)
		}
	})
}
