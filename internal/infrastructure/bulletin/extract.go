package bulletin

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// statusVocabulary maps bulletin status text to compliance.
// Anything else is unknown and left out of the result.
var statusVocabulary = map[string]bool{
	"Própria":   true,
	"Imprópria": false,
}

const (
	minCells    = 4
	codeColumn  = 1
	firstSample = 3
)

// TableReader - yields the table rows of a stored document as cell text
type TableReader interface {
	Rows(path string) ([][]string, error)
}

// ExtractCompliance maps station code to the status of its most recent sample.
// A later row for the same code replaces an earlier one.
func ExtractCompliance(rows [][]string) map[string]bool {
	result := make(map[string]bool)
	for _, row := range rows {
		if len(row) < minCells {
			continue
		}
		code := strings.TrimSpace(row[codeColumn])
		if code == "" {
			continue
		}

		last := ""
		for _, cell := range row[firstSample:] {
			if cell != "" {
				last = cell
			}
		}
		if last == "" {
			continue
		}

		status, ok := statusVocabulary[strings.TrimSpace(last)]
		if !ok {
			delete(result, code)
			continue
		}
		result[code] = status
	}
	return result
}

type pdfTableReader struct {
	// slotTolerance is how far, in points, text may start left of a column and still belong to it
	slotTolerance float64
}

// NewPDFTableReader reads table rows from PDF text. Text is bucketed into
// column slots taken from the widest row of each page, so an empty cell
// stays in place as "".
func NewPDFTableReader() TableReader {
	return &pdfTableReader{slotTolerance: 2.0}
}

// Rows returns no rows and no error when the document does not exist yet.
func (r *pdfTableReader) Rows(path string) (rows [][]string, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return nil, nil
	}

	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("%w: %v", ErrParse, p)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		textRows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrParse, i, err)
		}

		pageRows := make([][]segment, 0, len(textRows))
		for _, row := range textRows {
			texts := make([]pdf.Text, len(row.Content))
			copy(texts, row.Content)
			pageRows = append(pageRows, r.segments(texts))
		}
		rows = append(rows, r.layout(pageRows)...)
	}

	return rows, nil
}

// segment - text of one row starting at one X position
type segment struct {
	x    float64
	text string
}

// segments merges the texts of a row that start at the same X. Text pieces
// shown one after another without repositioning share their start X.
func (r *pdfTableReader) segments(texts []pdf.Text) []segment {
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

	var out []segment
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if n := len(out); n > 0 && t.X-out[n-1].x <= r.slotTolerance {
			out[n-1].text += t.S
			continue
		}
		out = append(out, segment{x: t.X, text: t.S})
	}
	return out
}

// layout places every segment in the column whose start is the closest one
// at or left of it. Column starts come from the row with the most segments.
func (r *pdfTableReader) layout(rows [][]segment) [][]string {
	var columns []float64
	for _, row := range rows {
		if len(row) > len(columns) {
			columns = columns[:0]
			for _, seg := range row {
				columns = append(columns, seg.x)
			}
		}
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]string, len(columns))
		for _, seg := range row {
			i := r.slot(columns, seg.x)
			text := strings.TrimSpace(seg.text)
			if cells[i] == "" {
				cells[i] = text
			} else {
				cells[i] += " " + text
			}
		}
		out = append(out, cells)
	}
	return out
}

func (r *pdfTableReader) slot(columns []float64, x float64) int {
	slot := 0
	for i, start := range columns {
		if start-r.slotTolerance <= x {
			slot = i
		}
	}
	return slot
}
