package sniffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
)

// textRow builds a row of text cells; "" leaves the cell empty.
func textRow(values ...string) sheet.Row {
	row := make(sheet.Row, len(values))
	for i, v := range values {
		row[i] = sheet.Text(v)
	}
	return row
}

func grid(rows ...sheet.Row) *sheet.Grid {
	return &sheet.Grid{Rows: rows}
}

func TestLocateHeader(t *testing.T) {
	tests := []struct {
		name    string
		profile *bank.Profile
		grid    *sheet.Grid
		want    int
		found   bool
	}{
		{
			name:    "kazpost header below title rows",
			profile: bank.Kazpost(),
			grid: grid(
				textRow("АО Казпочта"),
				textRow("Отчет на дату: 05.03.2024"),
				nil,
				textRow("№ п/п", "Номер лицевого счета", "Сумма оплаты"),
			),
			want: 3, found: true,
		},
		{
			name:    "kaspi requires both cells",
			profile: bank.Kaspi(),
			grid: grid(
				textRow("Дата", "Период", "Итог"),
				textRow(" Дата ", "Идентификатор платежа", "Лицевой счет", "Сумма платежа"),
			),
			want: 1, found: true,
		},
		{
			name:    "kaspi short row is not a header",
			profile: bank.Kaspi(),
			grid:    grid(textRow("Дата")),
			want:    -1, found: false,
		},
		{
			name:    "halyk substring on first cell",
			profile: bank.Halyk(),
			grid: grid(
				textRow("Выписка"),
				textRow("Дата операционного дня (МСК)", "Идентификатор платежа"),
			),
			want: 1, found: true,
		},
		{
			name:    "bcc three conditions",
			profile: bank.BCC(),
			grid: grid(
				textRow("№", "Получатель", "Дата"),
				textRow("№", "Плательщик (ФИО)", "Дата", "№ платежа"),
			),
			want: 1, found: true,
		},
		{
			name:    "first matching row wins",
			profile: bank.Halyk(),
			grid: grid(
				textRow("Дата операционного дня"),
				textRow("Дата операционного дня"),
			),
			want: 0, found: true,
		},
		{
			name:    "no header",
			profile: bank.BCC(),
			grid:    grid(textRow("a", "b", "c")),
			want:    -1, found: false,
		},
		{
			name:    "empty grid",
			profile: bank.Kazpost(),
			grid:    grid(),
			want:    -1, found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := LocateHeader(tt.grid, tt.profile.Header)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, idx)
		})
	}
}

func TestFindDocumentDate(t *testing.T) {
	dd := bank.Kazpost().DocumentDate

	tests := []struct {
		name  string
		grid  *sheet.Grid
		want  string
		found bool
	}{
		{
			name: "text after label",
			grid: grid(textRow("Реестр"), textRow("Отчет на дату:  05.03.2024 ")),
			want: "05.03.2024", found: true,
		},
		{
			name: "date in the next cell",
			grid: grid(sheet.Row{
				sheet.Text("на дату:"),
				sheet.Cell{},
				sheet.Date(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			}),
			want: "2024-03-05", found: true,
		},
		{
			name: "label beyond the scanned rows",
			grid: grid(nil, nil, nil, nil, nil, textRow("на дату: 05.03.2024")),
			want: "", found: false,
		},
		{
			name: "label only in another column",
			grid: grid(textRow("Отчет", "на дату: 05.03.2024")),
			want: "", found: false,
		},
		{
			name: "label without a value",
			grid: grid(textRow("на дату:")),
			want: "", found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDocumentDate(tt.grid, dd)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("profile without document date", func(t *testing.T) {
		_, ok := FindDocumentDate(grid(textRow("на дату: 05.03.2024")), nil)
		assert.False(t, ok)
	})
}

func TestMapColumns(t *testing.T) {
	t.Run("kaspi columns in any order", func(t *testing.T) {
		p := bank.Kaspi()
		header := textRow("Дата", "Сумма платежа", "Лицевой счет", "Идентификатор платежа")

		cols := MapColumns(header, p.Columns, p.RequiredFields())
		assert.Equal(t, ColumnMap{
			bank.FieldDate:      0,
			bank.FieldAmount:    1,
			bank.FieldAccount:   2,
			bank.FieldPaymentID: 3,
		}, cols)
	})

	t.Run("payment id is optional", func(t *testing.T) {
		p := bank.BCC()
		header := textRow("№", "Плательщик", "Дата", "Лицевой счет", "Сумма")

		cols := MapColumns(header, p.Columns, p.RequiredFields())
		require.Len(t, cols, 3)
		_, ok := cols.Index(bank.FieldPaymentID)
		assert.False(t, ok)
	})

	t.Run("missing required field yields empty map", func(t *testing.T) {
		p := bank.Halyk()
		header := textRow("Дата операционного дня", "Лицевой счет", "Комментарий")

		cols := MapColumns(header, p.Columns, p.RequiredFields())
		assert.Empty(t, cols)
		assert.Equal(t, []bank.Field{bank.FieldAmount}, Match(header, p.Columns).Missing(p.RequiredFields()))
	})

	t.Run("kazpost needs no date column", func(t *testing.T) {
		p := bank.Kazpost()
		header := textRow("№ п/п", "Номер лицевого счета", "ФИО", "Сумма", "Номер операции")

		cols := MapColumns(header, p.Columns, p.RequiredFields())
		assert.Equal(t, ColumnMap{
			bank.FieldAccount:   1,
			bank.FieldAmount:    3,
			bank.FieldPaymentID: 4,
		}, cols)
	})

	t.Run("first assignment is never overridden", func(t *testing.T) {
		p := bank.Kazpost()
		header := textRow("№ п/п", "Номер лицевого счета", "Сумма оплаты", "Сумма", "Лицевого счета (старый)")

		cols := MapColumns(header, p.Columns, p.RequiredFields())
		assert.Equal(t, 1, cols[bank.FieldAccount])
		assert.Equal(t, 2, cols[bank.FieldAmount])
	})

	t.Run("a cell claims at most one field", func(t *testing.T) {
		patterns := []bank.FieldPattern{
			{Field: bank.FieldAccount, Pattern: bank.Contains("счет")},
			{Field: bank.FieldPaymentID, Pattern: bank.Contains("счет")},
		}
		cols := Match(textRow("Лицевой счет", "Номер счета"), patterns)
		assert.Equal(t, ColumnMap{bank.FieldAccount: 0, bank.FieldPaymentID: 1}, cols)
	})

	t.Run("bcc exact labels ignore lookalikes", func(t *testing.T) {
		p := bank.BCC()
		header := textRow("№", "Плательщик", "Дата платежа", "Дата", "Лицевой счет", "Сумма комиссии", "Сумма")

		cols := MapColumns(header, p.Columns, p.RequiredFields())
		assert.Equal(t, 3, cols[bank.FieldDate])
		assert.Equal(t, 6, cols[bank.FieldAmount])
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(textRow("Дата", "Лицевой счет", "Сумма платежа"))
	b := Fingerprint(textRow(" дата ", "Лицевой-счет", "", "СУММА платежа"))
	c := Fingerprint(textRow("Дата", "Сумма платежа", "Лицевой счет"))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
