package services

import (
	"fmt"
	"testing"
)

func TestRoundRobinPairs(t *testing.T) {
	for n := 0; n <= 7; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("t%d", i)
			}
			pairs := RoundRobinPairs(ids)

			if n < 2 {
				if len(pairs) != 0 {
					t.Fatalf("expected no pairs, got %v", pairs)
				}
				return
			}
			if want := n * (n - 1) / 2; len(pairs) != want {
				t.Fatalf("got %d pairs, want %d", len(pairs), want)
			}

			seen := map[[2]string]bool{}
			perRound := map[int]map[string]bool{}
			maxRound := 0
			for _, p := range pairs {
				if p.HomeTeamID == p.AwayTeamID {
					t.Fatalf("team plays itself: %+v", p)
				}
				key := [2]string{p.HomeTeamID, p.AwayTeamID}
				if p.HomeTeamID > p.AwayTeamID {
					key = [2]string{p.AwayTeamID, p.HomeTeamID}
				}
				if seen[key] {
					t.Fatalf("pair repeated: %+v", p)
				}
				seen[key] = true

				if perRound[p.Round] == nil {
					perRound[p.Round] = map[string]bool{}
				}
				for _, id := range key {
					if perRound[p.Round][id] {
						t.Fatalf("%s plays twice in round %d", id, p.Round)
					}
					perRound[p.Round][id] = true
				}
				if p.Round > maxRound {
					maxRound = p.Round
				}
			}
			if want := n - 1 + n%2; maxRound != want {
				t.Errorf("rounds = %d, want %d", maxRound, want)
			}
		})
	}
}
