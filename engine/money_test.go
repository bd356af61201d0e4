package engine

import "testing"

func TestFormatCoins(t *testing.T) {
	tests := []struct {
		cp   int64
		want string
	}{
		{0, "0 cp"},
		{1, "1 cp"},
		{10, "1 sp"},
		{200, "2 gp"},
		{155, "1 gp 5 sp 5 cp"},
		{1050, "10 gp 5 sp"},
		{250000, "2,500 gp"},
		{-300, "-3 gp"},
	}
	for _, tt := range tests {
		if got := FormatCoins(tt.cp); got != tt.want {
			t.Errorf("FormatCoins(%d) = %q, want %q", tt.cp, got, tt.want)
		}
	}
}

func TestSalePrice(t *testing.T) {
	if got := SalePrice(100); got != 50 {
		t.Errorf("SalePrice(100) = %d", got)
	}
	if got := SalePrice(1); got != 0 {
		t.Errorf("SalePrice(1) = %d", got)
	}
}
