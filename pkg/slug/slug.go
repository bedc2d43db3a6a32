package slug

import "strings"

// ToKebabCase converts free text into a lowercase hyphenated slug.
// Tokens are split on whitespace runs, lowercased, stripped of any
// character outside [a-z-], and dropped when nothing survives. The
// function is pure and total: empty input yields empty output.
func ToKebabCase(text string) string {
	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		var sb strings.Builder
		for _, r := range strings.ToLower(token) {
			if (r >= 'a' && r <= 'z') || r == '-' {
				sb.WriteRune(r)
			}
		}
		if sb.Len() > 0 {
			kept = append(kept, sb.String())
		}
	}
	return strings.Join(kept, "-")
}
