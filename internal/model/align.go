package model

import "strings"

// Align joins fields with the field separator, padding each field after the
// first with as many spaces as lead the same column of reference. The column
// of a field is the number of separators already written, so a note that
// contains separators is padded once as a whole.
func Align(fields []string, reference string) string {
	columns := strings.Split(reference, FieldSeparator)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString(FieldSeparator)
			if i < len(columns) {
				b.WriteString(strings.Repeat(" ", leadingSpace(columns[i])))
			}
		}
		b.WriteString(f)
	}
	return b.String()
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\r\n\v\f"))
}
