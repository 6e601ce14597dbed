package xlsx

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractTextFlattensRows(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	_ = book.SetCellValue(sheet, "A1", "Date")
	_ = book.SetCellValue(sheet, "B1", "Amount")
	_ = book.SetCellValue(sheet, "A2", "2024-01-31")
	_ = book.SetCellValue(sheet, "B2", 1250)
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	text, err := ExtractText(buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if !strings.Contains(text, "Date\tAmount") || !strings.Contains(text, "2024-01-31\t1250") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextRejectsNonWorkbook(t *testing.T) {
	if _, err := ExtractText([]byte("plain text")); err == nil {
		t.Fatalf("expected error for non-workbook input")
	}
}
