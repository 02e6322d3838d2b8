package mixbin

import (
	"strings"

	"github.com/user/led_mixbin_go/internal/parser"
)

// TextCells renders one combination row against the 20-column bin-label row:
// a zero weight becomes the literal "0", a non-zero weight becomes
// "<label> <value>".
func TextCells(row [parser.SlotCount]float64, labels [parser.SlotCount]string) [parser.SlotCount]string {
	var cells [parser.SlotCount]string
	for i, v := range row {
		if v == 0 {
			cells[i] = "0"
		} else {
			cells[i] = labels[i] + " " + parser.FormatCompact(v, 6)
		}
	}
	return cells
}

// CombineText joins a combination's text cells into one human-readable
// description: within a channel group the non-zero cells are joined with
// " : ", groups that are entirely zero are dropped, and the surviving groups
// are joined with " + ".
func CombineText(cells []string) string {
	var groups []string
	for g := 0; g < parser.NumChannels; g++ {
		beg := g * parser.BinsPerChannel
		var nonZero []string
		for i := beg; i < beg+parser.BinsPerChannel && i < len(cells); i++ {
			c := strings.TrimSpace(cells[i])
			if c != "" && c != "0" {
				nonZero = append(nonZero, c)
			}
		}
		if len(nonZero) > 0 {
			groups = append(groups, strings.Join(nonZero, " : "))
		}
	}
	return strings.Join(groups, " + ")
}
