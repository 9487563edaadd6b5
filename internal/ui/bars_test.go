package ui

import "testing"

func TestDistributionWidthsProportions(t *testing.T) {
	// 7/2/1 of 10 mentions over 10 cells: 70%/20%/10%.
	widths := DistributionWidths([]int{7, 2, 1}, 10, 10)

	if widths[0] != 7 || widths[1] != 2 || widths[2] != 1 {
		t.Errorf("widths = %v, want [7 2 1]", widths)
	}
}

func TestDistributionWidthsSumToWidth(t *testing.T) {
	tests := []struct {
		counts []int
		total  int
		width  int
	}{
		{[]int{7, 2, 1}, 10, 10},
		{[]int{1, 1, 1}, 3, 10},
		{[]int{5, 3, 2}, 10, 33},
		{[]int{1, 0, 0}, 1, 7},
	}

	for _, tc := range tests {
		widths := DistributionWidths(tc.counts, tc.total, tc.width)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.width {
			t.Errorf("DistributionWidths(%v, %d, %d) = %v, sums to %d",
				tc.counts, tc.total, tc.width, widths, sum)
		}
	}
}

func TestDistributionWidthsZeroTotal(t *testing.T) {
	widths := DistributionWidths([]int{0, 0, 0}, 0, 10)
	for i, w := range widths {
		if w != 0 {
			t.Errorf("widths[%d] = %d, want 0", i, w)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		count, total, want int
	}{
		{7, 10, 70},
		{2, 10, 20},
		{1, 10, 10},
		{1, 3, 33},
		{0, 0, 0},
		{5, 0, 0},
	}

	for _, tc := range tests {
		if got := Percent(tc.count, tc.total); got != tc.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tc.count, tc.total, got, tc.want)
		}
	}
}

func TestRatingBarEmptyWidth(t *testing.T) {
	if got := RatingBar(5, 0, "green"); got != "" {
		t.Errorf("RatingBar width 0 = %q, want empty", got)
	}
}

func TestSentimentBarNoMentions(t *testing.T) {
	if got := SentimentBar(0, 0, 0, 5); got == "" {
		t.Error("empty distribution should still render a placeholder bar")
	}
}
