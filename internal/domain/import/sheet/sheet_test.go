package sheet

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func writeWorkbook(t *testing.T, name string, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   Format
		ok     bool
	}{
		{"zip container", []byte("PK\x03\x04rest"), FormatXLSX, true},
		{"xml declaration", []byte(`<?xml version="1.0"?><Workbook/>`), FormatXMLSS, true},
		{"xml after BOM and blank lines", append(append([]byte{}, utf8BOM...), []byte("\r\n  <?xml version=\"1.0\"?>")...), FormatXMLSS, true},
		{"ole2 compound file", append(append([]byte{}, oleMagic...), 0, 0, 0), FormatXLS, true},
		{"plain text", []byte("date,amount\n"), "", false},
		{"html table", []byte("<html><table></table></html>"), "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_XLSX(t *testing.T) {
	path := writeWorkbook(t, "report.xlsx", map[string]any{
		"A1": "Реестр платежей",
		"A3": "Дата",
		"B3": "Лицевой счет",
		"C3": "Сумма",
		"D3": "Код",
		"A4": time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		"B4": 123456,
		"C4": 1500.75,
		"D4": "00123",
	})

	grid, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, grid.Format)
	assert.Equal(t, "Sheet1", grid.Sheet)
	require.Equal(t, 4, grid.Len())

	assert.Equal(t, Text("Реестр платежей"), grid.Row(0).At(0))
	assert.True(t, grid.Row(1).IsEmpty(), "gap rows are kept as empty rows")
	assert.Equal(t, "Лицевой счет", grid.Row(2).At(1).Text)

	data := grid.Row(3)
	require.Equal(t, KindDate, data.At(0).Kind)
	assert.Equal(t, "2024-01-15", data.At(0).String())

	assert.Equal(t, Number(123456), data.At(1))
	assert.True(t, data.At(1).IsWholeNumber())
	assert.Equal(t, Number(1500.75), data.At(2))
	assert.Equal(t, Text("00123"), data.At(3), "string cells never become numbers")
}

func TestOpen_ExtensionIsOnlyAHint(t *testing.T) {
	src := writeWorkbook(t, "report.xlsx", map[string]any{"A1": "Дата"})
	dst := filepath.Join(filepath.Dir(src), "report.xls")
	require.NoError(t, os.Rename(src, dst))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	grid, err := Open(dst, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, grid.Format)
	assert.Equal(t, "Дата", grid.Row(0).At(0).Text)
	assert.Contains(t, buf.String(), "file extension does not match content")
}

func TestOpen_XMLSpreadsheet(t *testing.T) {
	doc := `<?xml version="1.0"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <Worksheet ss:Name="Отчет">
  <Table>
   <Row><Cell><Data ss:Type="String">Отчет на дату: 05.03.2024</Data></Cell></Row>
   <Row ss:Index="3">
    <Cell><Data ss:Type="String">№ п/п</Data></Cell>
    <Cell ss:MergeAcross="1"><Data ss:Type="String">Номер лицевого счета</Data></Cell>
    <Cell><Data ss:Type="String">Сумма оплаты</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="Number">1</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">000123</Data></Cell>
    <Cell ss:Index="5"><Data ss:Type="Number">2500.5</Data></Cell>
    <Cell><Data ss:Type="DateTime">2024-03-05T00:00:00.000</Data></Cell>
    <Cell><Data ss:Type="Number">n/a</Data></Cell>
   </Row>
  </Table>
 </Worksheet>
 <Worksheet ss:Name="Второй">
  <Table><Row><Cell><Data ss:Type="String">ignored</Data></Cell></Row></Table>
 </Worksheet>
</Workbook>`

	grid, err := Open(writeFile(t, "report.xls", []byte(doc)))
	require.NoError(t, err)

	assert.Equal(t, FormatXMLSS, grid.Format)
	assert.Equal(t, "Отчет", grid.Sheet)
	require.Equal(t, 4, grid.Len())

	assert.Equal(t, "Отчет на дату: 05.03.2024", grid.Row(0).At(0).Text)
	assert.True(t, grid.Row(1).IsEmpty())

	header := grid.Row(2)
	assert.Equal(t, "№ п/п", header.At(0).Text)
	assert.Equal(t, "Номер лицевого счета", header.At(1).Text)
	assert.True(t, header.At(2).IsEmpty(), "merged cell spans the next column")
	assert.Equal(t, "Сумма оплаты", header.At(3).Text)

	data := grid.Row(3)
	assert.Equal(t, Number(1), data.At(0))
	assert.True(t, data.At(1).IsEmpty())
	assert.Equal(t, Text("000123"), data.At(2))
	assert.True(t, data.At(3).IsEmpty())
	assert.Equal(t, Number(2500.5), data.At(4))
	assert.Equal(t, "2024-03-05", data.At(5).String())
	assert.Equal(t, Text("n/a"), data.At(6), "unparseable numbers keep their text")
}

func TestOpen_XMLSpreadsheetLegacyEncoding(t *testing.T) {
	body := `<?xml version="1.0" encoding="windows-1251"?>
<Workbook><Worksheet><Table><Row><Cell><Data Type="String">Лицевой счет</Data></Cell></Row></Table></Worksheet></Workbook>`
	encoded, err := charmap.Windows1251.NewEncoder().String(body)
	require.NoError(t, err)

	grid, err := Open(writeFile(t, "legacy.xml", []byte(encoded)))
	require.NoError(t, err)
	assert.Equal(t, "Лицевой счет", grid.Row(0).At(0).Text)
}

func TestOpen_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		target  error
		format  Format
	}{
		{"plain text", []byte("just some words"), ErrUnsupportedFormat, ""},
		{"empty file", []byte{}, ErrUnsupportedFormat, ""},
		{"broken zip", []byte("PK\x03\x04 this is not a workbook"), ErrCorruptFile, FormatXLSX},
		{"broken ole2", append(append([]byte{}, oleMagic...), bytes.Repeat([]byte{0xFF}, 64)...), ErrCorruptFile, FormatXLS},
		{"truncated xml", []byte(`<?xml version="1.0"?><Workbook><Worksheet><Table><Row>`), ErrCorruptFile, FormatXMLSS},
		{"xml without worksheet", []byte(`<?xml version="1.0"?><Workbook></Workbook>`), ErrCorruptFile, FormatXMLSS},
		{"xml without table", []byte(`<?xml version="1.0"?><Workbook><Worksheet/></Workbook>`), ErrCorruptFile, FormatXMLSS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "input.bin", tt.content)

			grid, err := Open(path)
			require.Error(t, err)
			assert.Nil(t, grid)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), path)

			if tt.format != "" {
				var corruptErr *CorruptFileError
				require.True(t, errors.As(err, &corruptErr))
				assert.Equal(t, tt.format, corruptErr.Format)
			}
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, ErrCorruptFile)
}

func TestXLSCell(t *testing.T) {
	tests := []struct {
		in   string
		want Cell
	}{
		{"", Cell{}},
		{"Лицевой счет", Text("Лицевой счет")},
		{"123456", Number(123456)},
		{"-15.5", Number(-15.5)},
		{"0", Number(0)},
		{"0.25", Number(0.25)},
		{"1e+06", Number(1e6)},
		{"000123", Text("000123")},
		{"1 500,00", Text("1 500,00")},
		{"Inf", Text("Inf")},
		{"NaN", Text("NaN")},
		{"15.01.2024", Text("15.01.2024")},
		{"-", Text("-")},
		{"2024-01-15T00:00:00Z", Date(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, xlsCell(tt.in))
		})
	}
}

func TestIsDateFormat(t *testing.T) {
	custom := func(s string) *string { return &s }

	assert.True(t, isDateFormat(14, nil))
	assert.True(t, isDateFormat(22, nil))
	assert.True(t, isDateFormat(57, nil))
	assert.False(t, isDateFormat(0, nil))
	assert.False(t, isDateFormat(2, nil))
	assert.False(t, isDateFormat(49, nil))

	assert.True(t, isDateFormat(164, custom("dd.mm.yyyy")))
	assert.True(t, isDateFormat(164, custom("[$-419]d mmmm yyyy")))
	assert.False(t, isDateFormat(164, custom("#,##0.00")))
	assert.False(t, isDateFormat(164, custom(`#,##0 "day"`)))
	assert.False(t, isDateFormat(164, custom("[Red]0.00")))
}

func TestCell(t *testing.T) {
	assert.True(t, Cell{}.IsEmpty())
	assert.True(t, Text("   ").IsEmpty())
	assert.False(t, Number(0).IsEmpty())

	assert.Equal(t, "12.5", Number(12.5).String())
	assert.Equal(t, "100000000000", Number(1e11).String())
	assert.Equal(t, "2024-02-01 10:30:00", Date(time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)).String())

	assert.False(t, Number(1.5).IsWholeNumber())
	assert.False(t, Text("12").IsWholeNumber())

	var row Row
	assert.Equal(t, Cell{}, row.At(3))
	assert.True(t, row.IsEmpty())
}
