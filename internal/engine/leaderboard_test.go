package engine

import (
	"testing"
)

func TestLeaderboardAppendAndSort(t *testing.T) {
	l := NewLeaderboard(3)

	l.Update(addr(1), 100)
	l.Update(addr(2), 300)
	l.Update(addr(3), 200)

	wantOrder := []byte{2, 3, 1}
	for i, b := range wantOrder {
		if l.Users[i] != addr(b) {
			t.Fatalf("rank %d = %s, want user %d", i+1, l.Users[i].Hex(), b)
		}
	}
}

func TestLeaderboardUpdateInPlace(t *testing.T) {
	l := NewLeaderboard(3)
	l.Update(addr(1), 100)
	l.Update(addr(2), 300)

	l.Update(addr(1), 500) // existing user climbs
	if l.Users[0] != addr(1) || l.Points[0] != 500 {
		t.Fatalf("head = %s/%d, want user 1 / 500", l.Users[0].Hex(), l.Points[0])
	}
	if l.Len() != 2 {
		t.Fatalf("len = %d, duplicate entry created", l.Len())
	}
}

func TestLeaderboardReplaceMinAndDiscard(t *testing.T) {
	l := NewLeaderboard(3)
	l.Update(addr(1), 100)
	l.Update(addr(2), 200)
	l.Update(addr(3), 300)

	// Below the minimum: discarded, no state change.
	l.Update(addr(4), 50)
	if _, _, ok := l.Rank(addr(4)); ok {
		t.Fatal("sub-minimum user entered a full board")
	}

	// Beats the minimum: displaces it.
	l.Update(addr(5), 150)
	if _, _, ok := l.Rank(addr(1)); ok {
		t.Fatal("displaced user still ranked")
	}
	rank, pts, ok := l.Rank(addr(5))
	if !ok || rank != 3 || pts != 150 {
		t.Fatalf("new entry rank=%d pts=%d ok=%v, want 3/150/true", rank, pts, ok)
	}
}

func TestLeaderboardRankAbsent(t *testing.T) {
	l := NewLeaderboard(2)
	l.Update(addr(1), 100)

	if _, _, ok := l.Rank(addr(9)); ok {
		t.Fatal("unknown user has a rank")
	}
}

func TestLeaderboardEqualPointsStable(t *testing.T) {
	l := NewLeaderboard(4)
	l.Update(addr(1), 100)
	l.Update(addr(2), 100)
	l.Update(addr(3), 100)

	// Equal points keep insertion order (stable re-sort).
	for i, b := range []byte{1, 2, 3} {
		if l.Users[i] != addr(b) {
			t.Fatalf("rank %d = %s, want user %d", i+1, l.Users[i].Hex(), b)
		}
	}
}
