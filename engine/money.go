package engine

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Coin values in copper pieces.
const (
	Copper int64 = 1
	Silver int64 = 10
	Gold   int64 = 100
)

var printer = message.NewPrinter(language.English)

// FormatCoins renders copper as gold, silver and copper, skipping empty
// denominations: 155 → "1 gp 5 sp 5 cp", 250000 → "2,500 gp".
func FormatCoins(cp int64) string {
	if cp == 0 {
		return "0 cp"
	}
	sign := ""
	if cp < 0 {
		sign, cp = "-", -cp
	}
	var parts []string
	if gp := cp / Gold; gp > 0 {
		parts = append(parts, printer.Sprintf("%d gp", gp))
	}
	if sp := cp % Gold / Silver; sp > 0 {
		parts = append(parts, printer.Sprintf("%d sp", sp))
	}
	if c := cp % Silver; c > 0 {
		parts = append(parts, printer.Sprintf("%d cp", c))
	}
	return sign + strings.Join(parts, " ")
}

// SalePrice is what the shop pays for an item: half its list price.
func SalePrice(price int64) int64 { return price / 2 }
