package pets

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestAge(t *testing.T) {
	cases := []struct {
		name  string
		birth civil.Date
		today civil.Date
		want  string
	}{
		{"same day", date(2025, 3, 15), date(2025, 3, 15), "0 months"},
		{"day before monthiversary", date(2025, 1, 20), date(2025, 3, 19), "1 months"},
		{"on monthiversary", date(2025, 1, 20), date(2025, 3, 20), "2 months"},
		{"eleven months", date(2024, 4, 1), date(2025, 3, 31), "11 months"},
		{"month end birth", date(2024, 3, 31), date(2025, 3, 15), "11 months"},
		{"exact one year", date(2024, 3, 15), date(2025, 3, 15), "1 years"},
		{"exact three years", date(2022, 6, 1), date(2025, 6, 1), "3 years"},
		{"years and months", date(2020, 1, 10), date(2025, 4, 10), "5 years and 3 months"},
		{"years and months before day", date(2020, 1, 10), date(2025, 4, 9), "5 years and 2 months"},
		{"leap day birth", date(2024, 2, 29), date(2025, 2, 28), "11 months"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Age(tc.birth, tc.today)
			if err != nil {
				t.Fatalf("Age error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Age(%s, %s) = %q, want %q", tc.birth, tc.today, got, tc.want)
			}
		})
	}
}

func TestAge_IsDeterministic(t *testing.T) {
	b, today := date(2019, 7, 4), date(2025, 3, 1)
	first, err := Age(b, today)
	if err != nil {
		t.Fatalf("Age error: %v", err)
	}
	for i := 0; i < 10; i++ {
		if got, _ := Age(b, today); got != first {
			t.Fatalf("expected stable result %q, got %q", first, got)
		}
	}
}

func TestAge_InvalidInput(t *testing.T) {
	today := date(2025, 3, 15)

	if _, err := Age(civil.Date{}, today); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing birth date, got %v", err)
	}
	if _, err := Age(date(2025, 4, 1), today); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for future birth date, got %v", err)
	}
	// mismo mes, día posterior: -1 meses
	if _, err := Age(date(2025, 3, 16), today); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for birth date tomorrow, got %v", err)
	}
}
