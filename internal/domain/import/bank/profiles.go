package bank

// Identifiers of the built-in layouts: the sender address each report arrives from.
const (
	KazpostID = "reports@kazpost.kz"
	KaspiID   = "imex@kaspi.kz"
	HalykID   = "ensemble@halykbank.kz"
	BCCID     = "info@bcc.kz"
)

// summaryLabels open the totals block under Kaspi and Halyk tables.
var summaryLabels = []Pattern{
	Exact("Общая сумма"),
	Exact("Комиссия"),
	Exact("Сумма к перечислению"),
	Exact("Количество"),
}

// Kazpost reports carry the date once, above the table.
func Kazpost() *Profile {
	return &Profile{
		ID:   KazpostID,
		Name: "Kazpost",
		Header: []CellCondition{
			{Column: 0, Pattern: Contains("№ п/п")},
		},
		Columns: []FieldPattern{
			{Field: FieldAccount, Pattern: Contains("лицевого счета")},
			{Field: FieldAmount, Pattern: Contains("Сумма оплаты")},
			{Field: FieldAmount, Pattern: Exact("Сумма")},
			{Field: FieldPaymentID, Pattern: Contains("№ операции")},
			{Field: FieldPaymentID, Pattern: ContainsFold("номер операции")},
		},
		Stop:       []Pattern{ContainsFold("итого")},
		AmountSkip: []Pattern{Contains("Итого")},
		DocumentDate: &DocumentDate{
			Label:   "на дату:",
			MaxRows: 5,
			Layout:  "02.01.2006",
		},
	}
}

// Kaspi keeps textual dates exactly as exported.
func Kaspi() *Profile {
	return &Profile{
		ID:   KaspiID,
		Name: "Kaspi",
		Header: []CellCondition{
			{Column: 0, Pattern: Exact("Дата")},
			{Column: 2, Pattern: Exact("Лицевой счет")},
		},
		Columns: []FieldPattern{
			{Field: FieldDate, Pattern: Exact("Дата")},
			{Field: FieldPaymentID, Pattern: Exact("Идентификатор платежа")},
			{Field: FieldAccount, Pattern: Exact("Лицевой счет")},
			{Field: FieldAmount, Pattern: Exact("Сумма платежа")},
		},
		Stop: summaryLabels,
	}
}

func Halyk() *Profile {
	return &Profile{
		ID:   HalykID,
		Name: "Halyk",
		Header: []CellCondition{
			{Column: 0, Pattern: Contains("Дата операционного дня")},
		},
		Columns: []FieldPattern{
			{Field: FieldDate, Pattern: Contains("Дата операционного дня")},
			{Field: FieldPaymentID, Pattern: Contains("Идентификатор платежа")},
			{Field: FieldAccount, Pattern: Contains("Лицевой счет")},
			{Field: FieldAmount, Pattern: Contains("Сумма платежа")},
		},
		Stop:        summaryLabels,
		DateLayouts: []string{"02/01/2006"},
	}
}

func BCC() *Profile {
	return &Profile{
		ID:   BCCID,
		Name: "BCC",
		Header: []CellCondition{
			{Column: 0, Pattern: Exact("№")},
			{Column: 1, Pattern: Contains("Плательщик")},
			{Column: 2, Pattern: Contains("Дата")},
		},
		Columns: []FieldPattern{
			{Field: FieldDate, Pattern: Exact("Дата")},
			{Field: FieldPaymentID, Pattern: Contains("№ платежа")},
			{Field: FieldAccount, Pattern: Contains("Лицевой счет")},
			{Field: FieldAmount, Pattern: Exact("Сумма")},
		},
		Stop:        []Pattern{ContainsFold("ИТОГО")},
		DateLayouts: []string{"02.01.2006"},
	}
}
