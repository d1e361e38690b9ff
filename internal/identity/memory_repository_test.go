package identity

import (
	"context"
	"testing"
	"time"
)

func TestFindPrefersMostRecentlyUpdatedCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, c := range []Customer{
		{ID: "7", Email: "Shared@b.com", Phone: "+1 555-0100", UpdatedAt: base},
		{ID: "9", Email: "shared@b.com", Phone: "+15550100", UpdatedAt: base.Add(time.Minute)},
		{ID: "8", Email: "shared@b.com", Phone: "+1-555-0100", UpdatedAt: base.Add(time.Minute)},
	} {
		if _, err := repo.Upsert(ctx, c); err != nil {
			t.Fatalf("upsert %s: %v", c.ID, err)
		}
	}

	for i := 0; i < 20; i++ {
		byEmail, err := repo.FindByEmail(ctx, "SHARED@b.com")
		if err != nil {
			t.Fatalf("find by email: %v", err)
		}
		if byEmail.ID != "9" {
			t.Fatalf("run %d: expected customer 9 by email, got %s", i, byEmail.ID)
		}
		byPhone, err := repo.FindByPhone(ctx, "+1 555 0100")
		if err != nil {
			t.Fatalf("find by phone: %v", err)
		}
		if byPhone.ID != "9" {
			t.Fatalf("run %d: expected customer 9 by phone, got %s", i, byPhone.ID)
		}
	}

	if err := repo.UpdatePasswordHash(ctx, "7", []byte("hash"), base.Add(time.Hour)); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, err := repo.FindByEmail(ctx, "shared@b.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if got.ID != "7" {
		t.Fatalf("expected the freshly updated customer 7, got %s", got.ID)
	}
}
