package engine

import (
	"github.com/ethereum/go-ethereum/common"
)

// Leaderboard maintains the exact top-K users of one week as two parallel
// sequences sorted descending by points. Invariants: same length <= K,
// points non-increasing by index, no duplicate addresses.
type Leaderboard struct {
	K      int
	Users  []common.Address
	Points []int64
}

func NewLeaderboard(k int) *Leaderboard {
	return &Leaderboard{
		K:      k,
		Users:  make([]common.Address, 0, k),
		Points: make([]int64, 0, k),
	}
}

// Update records user's new total. Present entries update in place; absent
// entries append while there is room, displace the minimum when they beat
// it, and are discarded otherwise.
func (l *Leaderboard) Update(user common.Address, points int64) {
	idx := -1
	for i, u := range l.Users {
		if u == user {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0:
		l.Points[idx] = points
	case len(l.Users) < l.K:
		l.Users = append(l.Users, user)
		l.Points = append(l.Points, points)
		idx = len(l.Users) - 1
	case points > l.Points[len(l.Points)-1]:
		idx = len(l.Users) - 1
		l.Users[idx] = user
		l.Points[idx] = points
	default:
		return
	}

	l.resort()
}

// resort restores descending order with a stable insertion pass. The array
// is small (<= K) and at most one element is out of place, so this is cheap.
func (l *Leaderboard) resort() {
	for i := 1; i < len(l.Points); i++ {
		u, p := l.Users[i], l.Points[i]
		j := i - 1
		for j >= 0 && l.Points[j] < p {
			l.Users[j+1] = l.Users[j]
			l.Points[j+1] = l.Points[j]
			j--
		}
		l.Users[j+1] = u
		l.Points[j+1] = p
	}
}

// Rank returns the 1-based rank of user, or false when the user is outside
// the top-K (such users are simply not ranked).
func (l *Leaderboard) Rank(user common.Address) (int, int64, bool) {
	for i, u := range l.Users {
		if u == user {
			return i + 1, l.Points[i], true
		}
	}
	return 0, 0, false
}

// Len returns the number of ranked users.
func (l *Leaderboard) Len() int { return len(l.Users) }
