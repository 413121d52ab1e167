package handlers

import (
	"testing"
	"time"
)

func TestFormatNaira(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₦0.00"},
		{5, "₦5.00"},
		{999.9, "₦999.90"},
		{1234.56, "₦1,234.56"},
		{10375, "₦10,375.00"},
		{1000000, "₦1,000,000.00"},
		{-2500.75, "-₦2,500.75"},
	}

	for _, tc := range cases {
		if got := formatNaira(tc.amount); got != tc.want {
			t.Errorf("formatNaira(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, time.March, 7, 15, 4, 5, 0, time.UTC)
	if got := formatDate(date); got != "Mar 7, 2024" {
		t.Errorf("formatDate = %q, want %q", got, "Mar 7, 2024")
	}
}
