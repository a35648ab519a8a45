package google

import "testing"

func TestAmountMatches(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		cents int64
		want  bool
	}{
		{"plain decimal dot", "1234.56", 123456, true},
		{"plain decimal comma", "1234,56", 123456, true},
		{"pt-BR formatted", "1.234,56", 123456, true},
		{"pt-BR with currency", "R$ 1.234,56", 123456, true},
		{"pt-BR millions", "1.234.567,89", 123456789, true},
		{"en-US formatted", "1,234.56", 123456, true},
		{"small amount", "50,00", 5000, true},
		{"wrong amount", "1.234,56", 99999, false},
		{"not a number", "pendente", 100, false},
		{"empty cell", "", 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := amountMatches(tt.cell, tt.cents); got != tt.want {
				t.Errorf("amountMatches(%q, %d) = %v, want %v", tt.cell, tt.cents, got, tt.want)
			}
		})
	}
}

func TestNormalizeAmountCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234,56"},
		{"R$ 1.234,56", "1234,56"},
		{"1,234.56", "1234.56"},
		{"1234,56", "1234,56"},
		{"R$ 50,00", "50,00"},
	}
	for _, tt := range tests {
		if got := normalizeAmountCell(tt.in); got != tt.want {
			t.Errorf("normalizeAmountCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	if got := yearPrefixedName("Lançamentos", 2025); got != "2025 Lançamentos" {
		t.Errorf("yearPrefixedName() = %q", got)
	}
}
