package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// numericFieldRe accepts a whole field only if it is a plain decimal or
// scientific-notation number. Fields carrying units ("3.2V"), percent signs
// or thousands separators are ignored rather than partially parsed.
var numericFieldRe = regexp.MustCompile(`^\s*[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?\s*$`)

func isNumericField(s string) bool {
	return numericFieldRe.MatchString(s)
}

func openCSV(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file %s: %w", filepath.Base(path), err)
	}
	r := csv.NewReader(file)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	return file, r, nil
}

// ReadRawData streams a channel's raw observation file through a bounded
// collector. Only whole-field numbers are accepted; non-numeric cells are
// skipped silently (they are the spreadsheet's labels and units, not data).
// Non-finite values are dropped with a warning.
func ReadRawData(path string, cap int) (*RawData, error) {
	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	out := &RawData{}
	collector := NewRowCollector(cap, nil)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data from %s: %w", filepath.Base(path), err)
		}
		var row []float64
		for _, field := range record {
			if !isNumericField(field) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				out.ParseErrors = append(out.ParseErrors,
					fmt.Sprintf("Warning: non-finite value %q in %s dropped.", field, filepath.Base(path)))
				continue
			}
			row = append(row, v)
		}
		collector.Add(row)
	}

	out.Rows = collector.Rows()
	out.Total = collector.Total()
	out.Sampled = collector.Sampled()
	if out.Sampled {
		out.ParseErrors = append(out.ParseErrors,
			fmt.Sprintf("Note: %s held %d observations; reservoir-sampled down to %d.",
				filepath.Base(path), out.Total, cap))
	}
	return out, nil
}

// ReadPopulation flattens every numeric cell of a file into one population.
// Used for the per-bin observation files, where row structure no longer
// matters.
func ReadPopulation(path string) ([]float64, error) {
	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var values []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read population from %s: %w", filepath.Base(path), err)
		}
		for _, field := range record {
			s := strings.TrimSpace(field)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
	}
	return values, nil
}

// ReadSamples reads a per-combination simulated-voltage file: one scalar per
// line. Junk lines are skipped, matching how the rest of the pipeline treats
// stray cells.
func ReadSamples(path string) ([]float64, error) {
	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var samples []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read samples from %s: %w", filepath.Base(path), err)
		}
		if len(record) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			continue
		}
		samples = append(samples, v)
	}
	return samples, nil
}

// ReadParamVector reads the first row of a small parameter file and returns
// its first NumChannels columns. These files carry one scalar per channel
// (series counts, thermal factors, currents).
func ReadParamVector(path string) ([NumChannels]float64, error) {
	var vec [NumChannels]float64
	file, reader, err := openCSV(path)
	if err != nil {
		return vec, err
	}
	defer file.Close()

	record, err := reader.Read()
	if err != nil {
		return vec, fmt.Errorf("failed to read parameter row from %s: %w", filepath.Base(path), err)
	}
	if len(record) < NumChannels {
		return vec, Validationf("%s: expected %d columns, found %d", filepath.Base(path), NumChannels, len(record))
	}
	for i := 0; i < NumChannels; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return vec, Validationf("%s: column %d is not numeric: %q", filepath.Base(path), i+1, record[i])
		}
		vec[i] = v
	}
	return vec, nil
}

// ReadNodeTable reads the bin boundary file: NumChannels rows, at least
// NodeCount columns each. Structural validation of each row (zero placement,
// monotonicity) belongs to the bins package; this only requires numbers.
func ReadNodeTable(path string) ([NumChannels][NodeCount]float64, error) {
	var nodes [NumChannels][NodeCount]float64
	file, reader, err := openCSV(path)
	if err != nil {
		return nodes, err
	}
	defer file.Close()

	rows, err := reader.ReadAll()
	if err != nil {
		return nodes, fmt.Errorf("failed to read node table %s: %w", filepath.Base(path), err)
	}
	if len(rows) < NumChannels {
		return nodes, Validationf("%s: expected %d rows of bin nodes, found %d", filepath.Base(path), NumChannels, len(rows))
	}
	for i := 0; i < NumChannels; i++ {
		if len(rows[i]) < NodeCount {
			return nodes, Validationf("%s: row %d has %d columns, expected at least %d",
				filepath.Base(path), i+1, len(rows[i]), NodeCount)
		}
		for j := 0; j < NodeCount; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rows[i][j]), 64)
			if err != nil {
				return nodes, Validationf("%s: row %d column %d is not numeric: %q",
					filepath.Base(path), i+1, j+1, rows[i][j])
			}
			nodes[i][j] = v
		}
	}
	return nodes, nil
}

// ReadMixPattern reads one channel's mixing table: up to MaxMixRows rows are
// inspected, the first BinsPerChannel columns of each. Blank cells count as
// 0; anything else non-numeric is a validation error naming the row.
func ReadMixPattern(path string) (*MixPattern, error) {
	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	pattern := &MixPattern{}
	for i := 0; i < MaxMixRows; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mix pattern %s: %w", filepath.Base(path), err)
		}
		var row [BinsPerChannel]float64
		for j := 0; j < BinsPerChannel; j++ {
			if j >= len(record) {
				continue // short rows pad with 0
			}
			s := strings.TrimSpace(record[j])
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, Validationf("%s: row %d has non-numeric content: %q", filepath.Base(path), i+1, record[j])
			}
			row[j] = v
		}
		pattern.Rows = append(pattern.Rows, row)
	}
	return pattern, nil
}

// ReadIVCurves reads the If/Vf interpolation table: up to 25 rows, with
// channel i occupying columns 2i (If) and 2i+1 (Vf). Pairs where either
// component is zero are treated as unused slots and dropped.
func ReadIVCurves(path string) ([NumChannels]IVCurve, error) {
	var curves [NumChannels]IVCurve
	file, reader, err := openCSV(path)
	if err != nil {
		return curves, err
	}
	defer file.Close()

	rows, err := reader.ReadAll()
	if err != nil {
		return curves, fmt.Errorf("failed to read If/Vf table %s: %w", filepath.Base(path), err)
	}
	for ch := 0; ch < NumChannels; ch++ {
		ifCol, vfCol := ch*2, ch*2+1
		for _, row := range rows {
			if len(row) <= vfCol {
				continue
			}
			ifVal, err1 := strconv.ParseFloat(strings.TrimSpace(row[ifCol]), 64)
			vfVal, err2 := strconv.ParseFloat(strings.TrimSpace(row[vfCol]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			if ifVal != 0 && vfVal != 0 {
				curves[ch].If = append(curves[ch].If, ifVal)
				curves[ch].Vf = append(curves[ch].Vf, vfVal)
			}
		}
	}
	return curves, nil
}

// ReadCombos loads a 20-column combination table into memory.
func ReadCombos(path string) ([][SlotCount]float64, error) {
	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var combos [][SlotCount]float64
	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read combination table %s: %w", filepath.Base(path), err)
		}
		rowIdx++
		if len(record) == 0 {
			continue
		}
		var row [SlotCount]float64
		for j := 0; j < SlotCount && j < len(record); j++ {
			s := strings.TrimSpace(record[j])
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, Validationf("%s: row %d column %d is not numeric: %q",
					filepath.Base(path), rowIdx, j+1, record[j])
			}
			row[j] = v
		}
		combos = append(combos, row)
	}
	return combos, nil
}

// ReadTextRows loads a CSV of string cells (the combination text table).
func ReadTextRows(path string) ([][]string, error) {
	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	out := rows[:0]
	for _, r := range rows {
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}
