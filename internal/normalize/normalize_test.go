package normalize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\r\n", "a\nb"},
		{"dashes", "12.345.678\u22129 \u2013 x \u2014 y", "12.345.678-9 - x - y"},
		{"nbsp", "Total\u00a0Honorarios", "Total Honorarios"},
		{"space runs", "a  \t b\t\tc", "a b c"},
		{"space before newline", "a   \nb \t\nc", "a\nb\nc"},
		{"outer", "  \n hola \n ", "hola"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextIsStable(t *testing.T) {
	in := "BOLETA  DE HONORARIOS\r\n N° 12 \n\n RUT: 12.345.678–9  "
	once := Text(in)
	if twice := Text(once); twice != once {
		t.Fatalf("Text not stable: %q then %q", once, twice)
	}
	if strings.ContainsAny(once, "\r\u00a0\u2013") {
		t.Fatalf("Text left forbidden runes: %q", once)
	}
}

func TestLines(t *testing.T) {
	got := Lines("  uno \n\n  dos\r\n \n tres  ")
	want := []string{"uno", "dos", "tres"}
	if len(got) != len(want) {
		t.Fatalf("Lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"28.000", Float(28000)},
		{"1.234,56", Float(1234.56)},
		{"", nil},
		{"   ", nil},
		{"1234.5", Float(1234.5)},
		{"$ 28.000", Float(28000)},
		{"$28.000.-", Float(28000)},
		{"CLP 1.234.567", Float(1234567)},
		{"Total $ 12.500", Float(12500)},
		{"28.000,5", Float(28000.5)},
		{"1234", Float(1234)},
		{"1 234 567", Float(1234567)},
		{"12,345,678", Float(12345678)},
		{"abc", nil},
		{"$", nil},
		{"1.2.3,4.5", nil},
	}
	for _, tt := range tests {
		got := Amount(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("Amount(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && got == nil:
			t.Errorf("Amount(%q) = nil, want %v", tt.in, *tt.want)
		case tt.want != nil && *got != *tt.want:
			t.Errorf("Amount(%q) = %v, want %v", tt.in, *got, *tt.want)
		}
	}
}

func TestFirstNonZero(t *testing.T) {
	if got := FirstNonZero(nil, Float(0), Float(7), Float(9)); got == nil || *got != 7 {
		t.Fatalf("FirstNonZero = %v, want 7", got)
	}
	if got := FirstNonZero(nil, Float(0)); got != nil {
		t.Fatalf("FirstNonZero = %v, want nil", *got)
	}
}

func TestRUT(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345.678-9", "12345678-9"},
		{"76.543.210-k", "76543210-K"},
		{" 9.876.543 - 2 ", "9876543-2"},
		{"12345678 k", "12345678-K"},
		{"12.345.678–9", "12345678-9"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RUT(tt.in); got != tt.want {
			t.Errorf("RUT(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRUTIdempotent(t *testing.T) {
	inputs := []string{
		"12.345.678-9", "76.543.210-k", "12345678 k", " 1.111.111 — 1 ",
		"RUT: 12.345.678-9", "abc", "  12 - k", "11.111.111 -  k  ",
	}
	for _, in := range inputs {
		once := RUT(in)
		if twice := RUT(once); twice != once {
			t.Errorf("RUT not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFindRUT(t *testing.T) {
	if got := FindRUT("RUT: 12.345.678-k Giro"); got != "12345678-K" {
		t.Fatalf("FindRUT = %q", got)
	}
	if got := FindRUT("sin identificador"); got != "" {
		t.Fatalf("FindRUT = %q, want empty", got)
	}
}

func TestMonths(t *testing.T) {
	if MonthNumber("junio") != 6 || MonthNumber("DICIEMBRE") != 12 || MonthNumber("foo") != 0 {
		t.Fatal("MonthNumber mismatch")
	}
	if MonthIn("periodo: marzo de 2024") != 3 {
		t.Fatal("MonthIn mismatch")
	}
	if p, m := FindPeriodCompact("J U N I O 2025"); p != "Junio 2025" || m != 6 {
		t.Fatalf("FindPeriodCompact = %q, %d", p, m)
	}
	if p, m := FindPeriod("Remuneraciones de Septiembre 2024 pagadas"); p != "Septiembre 2024" || m != 9 {
		t.Fatalf("FindPeriod = %q, %d", p, m)
	}
	if p, _ := FindPeriod("nada"); p != "" {
		t.Fatalf("FindPeriod = %q, want empty", p)
	}
}
