package xlsparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleXML = `<?xml version="1.0"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <Worksheet ss:Name="Лист1">
  <Table>
   <Row>
    <Cell><Data ss:Type="String">Объект</Data></Cell>
    <Cell><Data ss:Type="String">Заезд</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="String">Балашиха Дом 1</Data></Cell>
    <Cell><Data ss:Type="String">01.06.2024</Data></Cell>
    <Cell><Data ss:Type="String">03.06.2024</Data></Cell>
    <Cell><Data ss:Type="String">2000</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="String">x</Data></Cell>
    <Cell/>
   </Row>
  </Table>
 </Worksheet>
</Workbook>`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse_SpreadsheetML(t *testing.T) {
	path := writeTemp(t, "export.xls", sampleXML)

	grid, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(grid) != 3 {
		t.Fatalf("rows = %d, want 3", len(grid))
	}
	if grid[0][0] != "Объект" {
		t.Errorf("header cell = %q", grid[0][0])
	}
	if len(grid[1]) != 4 || grid[1][0] != "Балашиха Дом 1" || grid[1][3] != "2000" {
		t.Errorf("data row = %v", grid[1])
	}
	// Empty Cell elements become empty strings, not dropped cells.
	if len(grid[2]) != 2 || grid[2][1] != "" {
		t.Errorf("sparse row = %v", grid[2])
	}
}

func TestParse_MissingWorksheet(t *testing.T) {
	path := writeTemp(t, "empty.xls", `<?xml version="1.0"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"></Workbook>`)

	if _, err := Parse(path); !errors.Is(err, ErrNoWorksheet) {
		t.Errorf("err = %v, want ErrNoWorksheet", err)
	}
}

func TestParse_MissingTable(t *testing.T) {
	path := writeTemp(t, "notable.xls", `<?xml version="1.0"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet">
 <Worksheet></Worksheet>
</Workbook>`)

	if _, err := Parse(path); !errors.Is(err, ErrNoTable) {
		t.Errorf("err = %v, want ErrNoTable", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	path := writeTemp(t, "garbage.xls", "definitely not xml")
	if _, err := Parse(path); err == nil {
		t.Error("expected parse error")
	}
}
