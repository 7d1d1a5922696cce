package dialect

import (
	"fmt"
	"strings"
)

// GeneratePlaceholders is a helper function to create a slice of placeholder strings.
// It takes the number of placeholders needed and a function that returns the placeholder for a given index.
// It returns a comma-separated string of the generated placeholders.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// DefaultInsertQuery builds a plain INSERT with the dialect's placeholders.
func DefaultInsertQuery(table string, cols []string, placeholderFunc func(int) string) string {
	vals := GeneratePlaceholders(len(cols), placeholderFunc)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), vals)
}

// DefaultCountQuery is shared by every dialect.
func DefaultCountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
}
