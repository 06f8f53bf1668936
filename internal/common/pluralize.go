package common

import "fmt"

// PluralizeDays returns "day" or "days" for n.
func PluralizeDays(n int) string {
	if n == 1 || n == -1 {
		return "day"
	}
	return "days"
}

// FormatDays renders "1 day", "7 days".
func FormatDays(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeDays(n))
}
