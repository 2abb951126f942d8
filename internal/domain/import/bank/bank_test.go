package bank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		input   string
		want    bool
	}{
		{"exact equal", Exact("Дата"), "Дата", true},
		{"exact rejects longer text", Exact("Дата"), "Дата платежа", false},
		{"exact is case sensitive", Exact("Дата"), "дата", false},
		{"contains substring", Contains("лицевого счета"), "Номер лицевого счета", true},
		{"contains is case sensitive", Contains("Итого"), "ИТОГО:", false},
		{"fold ignores case", ContainsFold("итого"), "ИТОГО:", true},
		{"fold mixed case", ContainsFold("номер операции"), "Номер Операции", true},
		{"fold no match", ContainsFold("итого"), "Всего", false},
		{"decomposed input matches composed label", Contains("Лицевой"), "Лицево\u0438\u0306 счет", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Match(tt.input))
		})
	}
}

func TestMatchAny(t *testing.T) {
	assert.True(t, MatchAny(summaryLabels, "Комиссия"))
	assert.False(t, MatchAny(summaryLabels, "Комиссия банка"))
	assert.False(t, MatchAny(nil, "anything"))
}

func TestProfile_RequiredFields(t *testing.T) {
	assert.Equal(t, []Field{FieldAccount, FieldAmount}, Kazpost().RequiredFields())
	for _, p := range []*Profile{Kaspi(), Halyk(), BCC()} {
		assert.Equal(t, []Field{FieldDate, FieldAccount, FieldAmount}, p.RequiredFields(), p.Name)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{KazpostID, KaspiID, HalykID, BCCID}, r.IDs())
	require.Len(t, r.Profiles(), 4)

	for _, id := range r.IDs() {
		t.Run(id, func(t *testing.T) {
			p, err := r.Lookup(id)
			require.NoError(t, err)
			assert.Equal(t, id, p.ID)
			assert.NotEmpty(t, p.Header)
			assert.NotEmpty(t, p.Columns)
			assert.NotEmpty(t, p.Stop)
		})
	}
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name       string
		id         string
		suggestion string
	}{
		{"case differs", "IMEX@KASPI.KZ", KaspiID},
		{"fragment", "halyk", HalykID},
		{"typo", "info@bcc.com", BCCID},
		{"unrelated", "1234567890", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Lookup(tt.id)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrUnknownBank))

			var unknown *UnknownBankError
			require.True(t, errors.As(err, &unknown))
			assert.Equal(t, tt.id, unknown.ID)
			assert.Equal(t, tt.suggestion, unknown.Suggestion)
			if tt.suggestion != "" {
				assert.Contains(t, err.Error(), "did you mean")
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Run("adds a new layout", func(t *testing.T) {
		r := DefaultRegistry()
		r.Register(&Profile{
			ID:      "reports@newbank.kz",
			Name:    "New Bank",
			Header:  []CellCondition{{Column: 0, Pattern: Exact("Date")}},
			Columns: []FieldPattern{{Field: FieldDate, Pattern: Exact("Date")}},
		})

		p, err := r.Lookup("reports@newbank.kz")
		require.NoError(t, err)
		assert.Equal(t, "New Bank", p.Name)
		assert.Len(t, r.Profiles(), 5)
	})

	t.Run("panics on duplicate", func(t *testing.T) {
		r := DefaultRegistry()
		assert.Panics(t, func() { r.Register(Kaspi()) })
	})

	t.Run("panics without identifier", func(t *testing.T) {
		r := NewRegistry()
		assert.Panics(t, func() { r.Register(&Profile{Name: "anonymous"}) })
	})
}
