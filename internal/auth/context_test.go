package auth

import (
	"context"
	"testing"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), 99)
	if got := UserID(ctx); got != 99 {
		t.Errorf("UserID = %d, want 99", got)
	}
}

func TestUserIDMissing(t *testing.T) {
	if got := UserID(context.Background()); got != 0 {
		t.Errorf("UserID = %d, want 0", got)
	}
}
