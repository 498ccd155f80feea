package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
)

type xlsxParser struct{}

// NewXLSXParser spreadsheet DocumentParser: every sheet in order, one line per
// non-empty row, cells separated by tabs.
func NewXLSXParser() repository.DocumentParser {
	return &xlsxParser{}
}

func (p *xlsxParser) Extensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// ParseFile reads the workbook at path
func (p *xlsxParser) ParseFile(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("excel file has no sheets")
	}

	var sb strings.Builder
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to get rows of %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		if len(sheets) > 1 {
			sb.WriteString("# " + sheet + "\n")
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(trimCells(row), "\t"))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

// trimCells drops trailing empty cells
func trimCells(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	out := make([]string, end)
	for i := range out {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
