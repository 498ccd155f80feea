package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXParserSingleSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Prices": {
			{"Item", "Price"},
			{"Coffee", 3},
			{"", ""},
			{"Tea", 2, ""},
		},
	}, []string{"Prices"})

	text, err := NewXLSXParser().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Item\tPrice\nCoffee\t3\nTea\t2", text)
}

func TestXLSXParserSheetsInOrder(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"First":  {{"a"}},
		"Second": {{"b"}},
	}, []string{"First", "Second"})

	text, err := NewXLSXParser().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# First\na\n# Second\nb", text)
}

func TestXLSXParserMissingFile(t *testing.T) {
	_, err := NewXLSXParser().ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestXLSXParserExtensions(t *testing.T) {
	assert.Contains(t, NewXLSXParser().Extensions(), ".xlsx")
}

func TestTextParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two"), 0o644))

	text, err := NewTextParser().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)

	bad := filepath.Join(t.TempDir(), "bin.txt")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe, 0x00}, 0o644))
	_, err = NewTextParser().ParseFile(context.Background(), bad)
	assert.Error(t, err)
}

func TestPDFParserRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	_, err := NewPDFParser().ParseFile(context.Background(), path)
	assert.Error(t, err)
	assert.Equal(t, []string{".pdf"}, NewPDFParser().Extensions())
}
