package parser

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// WriteRows writes a headerless CSV, replacing any previous file. Stage
// outputs are regenerated from scratch each run; stale files from an earlier
// run are never appended to.
func WriteRows(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// FormatCompact renders x rounded to prec decimals with trailing zeros
// trimmed, and integers without a decimal point. Values inside 1e-15 of zero
// collapse to "0".
func FormatCompact(x float64, prec int) string {
	if math.Abs(x) < 1e-15 {
		return "0"
	}
	shift := math.Pow(10, float64(prec))
	x = math.Round(x*shift) / shift
	if x == math.Trunc(x) && math.Abs(x) < 1e15 {
		return strconv.FormatInt(int64(x), 10)
	}
	s := strconv.FormatFloat(x, 'f', prec, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
