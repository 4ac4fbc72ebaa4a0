package pets

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// Age devuelve la edad legible de una mascota nacida en birth, a la fecha today.
// Menos de un año se expresa en meses; desde el año, en años y meses.
func Age(birth, today civil.Date) (string, error) {
	if !birth.IsValid() || !today.IsValid() {
		return "", fmt.Errorf("%w: birth date required", ErrInvalidInput)
	}

	total := (today.Year-birth.Year)*12 + int(today.Month-birth.Month)
	if today.Day < birth.Day {
		total--
	}
	if total < 0 {
		return "", fmt.Errorf("%w: birth date %s is after %s", ErrInvalidInput, birth, today)
	}

	if total < 12 {
		return fmt.Sprintf("%d months", total), nil
	}
	years, months := total/12, total%12
	if months == 0 {
		return fmt.Sprintf("%d years", years), nil
	}
	return fmt.Sprintf("%d years and %d months", years, months), nil
}
