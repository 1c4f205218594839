package analysis

import "strings"

// SplitRecord splits one logical record into fields. Commas inside quoted
// sections do not split, and a doubled quote inside a quoted section yields a
// single literal quote. A record with K delimiters always yields K+1 fields.
//
// Fields whose assembled content is wrapped in literal quotes (only possible
// through escaped quotes) are kept verbatim; all others are whitespace-trimmed.
func SplitRecord(record string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(record); i++ {
		ch := record[i]
		if inQuotes {
			switch {
			case ch == '"' && i+1 < len(record) && record[i+1] == '"':
				cur.WriteByte('"')
				i++
			case ch == '"':
				inQuotes = false
			default:
				cur.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, cur.String())

	for i, f := range fields {
		if len(f) > 1 && f[0] == '"' && f[len(f)-1] == '"' {
			continue
		}
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
