package game

import "testing"

func TestScore(t *testing.T) {
	cases := []struct {
		name      string
		base      int
		remaining int
		limit     int
		want      int
	}{
		{"full time bonus", 1000, 20, 20, 1500},
		{"no time left", 1000, 0, 20, 1000},
		{"half time", 500, 10, 20, 750},
		{"floor on uneven division", 100, 1, 3, 266},
		{"negative remaining clamps to base", 100, -2, 20, 100},
		{"remaining above limit clamps to full bonus", 100, 30, 20, 600},
		{"zero limit degrades to base", 100, 10, 0, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.base, tc.remaining, tc.limit); got != tc.want {
				t.Fatalf("Score(%d, %d, %d) = %d, want %d", tc.base, tc.remaining, tc.limit, got, tc.want)
			}
		})
	}
}
