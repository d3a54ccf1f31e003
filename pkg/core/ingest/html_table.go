package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLTableToCSV extracts the first <table> from an HTML fragment and
// renders it as CSV. Colspans and rowspans are resolved through a virtual
// grid so columns stay aligned; spanned continuation cells come out empty.
func HTMLTableToCSV(tableHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	rows := doc.Find("table").First().Find("tr")
	if rows.Length() == 0 {
		return "", fmt.Errorf("no table rows found")
	}

	maxCols := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		localCols := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			localCols += spanAttr(cell, "colspan")
		})
		if localCols > maxCols {
			maxCols = localCols
		}
	})
	if maxCols == 0 {
		return "", fmt.Errorf("table has no cells")
	}

	rowCount := rows.Length()
	grid := make([][]string, rowCount)
	filled := make([][]bool, rowCount)
	for i := range grid {
		grid[i] = make([]string, maxCols)
		filled[i] = make([]bool, maxCols)
	}

	rows.Each(func(rowIdx int, tr *goquery.Selection) {
		colIdx := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			for colIdx < maxCols && filled[rowIdx][colIdx] {
				colIdx++
			}
			if colIdx >= maxCols {
				return
			}

			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			text := cleanCellText(cell.Text())

			for r := 0; r < rowspan; r++ {
				for c := 0; c < colspan; c++ {
					targetRow, targetCol := rowIdx+r, colIdx+c
					if targetRow < rowCount && targetCol < maxCols {
						if r == 0 && c == 0 {
							grid[targetRow][targetCol] = text
						}
						filled[targetRow][targetCol] = true
					}
				}
			}
			colIdx += colspan
		})
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range grid {
		if isEmptyRow(row) {
			continue
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func spanAttr(cell *goquery.Selection, name string) int {
	n, _ := strconv.Atoi(cell.AttrOr(name, "1"))
	if n < 1 {
		n = 1
	}
	return n
}

func cleanCellText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
