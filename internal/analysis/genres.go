package analysis

import "strings"

const quoteChars = `"'`

// ExtractGenres decodes a genre field into genre names. Two encodings are
// understood: a bracketed list such as ['Action', "Drama"] and plain
// comma-separated text. Order and duplicates are preserved.
func ExtractGenres(field string) []string {
	field = strings.TrimSpace(field)

	if strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		if len(field) < 2 {
			field = ""
		} else {
			field = field[1 : len(field)-1]
		}
	}

	if strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") && len(field) >= 2 {
		return parseBracketList(strings.TrimSpace(field[1 : len(field)-1]))
	}

	var genres []string
	for _, piece := range strings.Split(field, ",") {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		genres = append(genres, strings.Trim(strings.TrimSpace(piece), quoteChars))
	}
	return genres
}

// parseBracketList reads the interior of a bracketed list. Quoted tokens are
// taken verbatim; bare tokens run to the next comma and are trimmed. An
// unterminated quoted token is discarded.
func parseBracketList(inside string) []string {
	var (
		genres []string
		cur    strings.Builder
		quote  byte
	)

	for i := 0; i < len(inside); {
		ch := inside[i]
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
			cur.Reset()
			i++
		case quote != 0:
			if ch != quote {
				cur.WriteByte(ch)
				i++
				continue
			}
			genres = append(genres, cur.String())
			quote = 0
			i++
			for i < len(inside) && (inside[i] == ',' || inside[i] == ' ') {
				i++
			}
		default:
			j := i
			for j < len(inside) && inside[j] != ',' {
				j++
			}
			if token := strings.Trim(strings.TrimSpace(inside[i:j]), quoteChars); token != "" {
				genres = append(genres, token)
			}
			i = j + 1
		}
	}
	return genres
}
