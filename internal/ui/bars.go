// Package ui holds the lipgloss style catalog and small render helpers.
package ui

import "strings"

// RatingBar renders a 0-10 average as a filled bar of the given width,
// styled by the server's color tier.
func RatingBar(average float64, width int, color string) string {
	if width <= 0 {
		return ""
	}
	if average < 0 {
		average = 0
	}
	if average > 10 {
		average = 10
	}
	filled := int(average/10*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	style := RatingStyle(color)
	return style.Render(strings.Repeat("█", filled)) + DimStyle.Render(strings.Repeat("░", width-filled))
}

// DistributionWidths splits width cells across counts proportionally to
// their share of total. The result sums to width exactly when total > 0;
// leftover cells go to the largest fractional parts, earlier buckets first.
func DistributionWidths(counts []int, total, width int) []int {
	widths := make([]int, len(counts))
	if total <= 0 || width <= 0 || len(counts) == 0 {
		return widths
	}

	fracs := make([]float64, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(c) * float64(width) / float64(total)
		widths[i] = int(exact)
		fracs[i] = exact - float64(widths[i])
		assigned += widths[i]
	}

	for assigned < width {
		best := 0
		for i := 1; i < len(fracs); i++ {
			if fracs[i] > fracs[best] {
				best = i
			}
		}
		widths[best]++
		fracs[best] = -1
		assigned++
	}

	return widths
}

// SentimentBar renders a positive/neutral/negative distribution as one
// colored bar of the given width.
func SentimentBar(positive, neutral, negative, width int) string {
	if width <= 0 {
		return ""
	}
	total := positive + neutral + negative
	if total == 0 {
		return DimStyle.Render(strings.Repeat("░", width))
	}
	widths := DistributionWidths([]int{positive, neutral, negative}, total, width)
	return PositiveStyle.Render(strings.Repeat("█", widths[0])) +
		NeutralStyle.Render(strings.Repeat("█", widths[1])) +
		NegativeStyle.Render(strings.Repeat("█", widths[2]))
}

// Percent returns count's share of total as a whole percentage.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(count)/float64(total)*100 + 0.5)
}
