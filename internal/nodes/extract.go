package nodes

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// "trabajo en Eroski Bilbao", "mi tienda es Deusto", "desde la tienda de Getxo"
	storePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)trabajo en (?:la tienda (?:de )?)?([\p{L}0-9 .\-]{2,40})`),
		regexp.MustCompile(`(?i)(?:mi )?tienda(?: es| de)? ([\p{L}0-9 .\-]{2,40})`),
		regexp.MustCompile(`(?i)desde (?:la tienda (?:de )?)?([\p{L}0-9 .\-]{2,40})`),
		regexp.MustCompile(`(?i)\b(eroski [\p{L}0-9 .\-]{2,40})`),
	}
)

// extractEmail returns the first email address in the text, lowercased.
func extractEmail(text string) string {
	return strings.ToLower(emailPattern.FindString(text))
}

// extractStore pulls a store name out of free text. Trailing connectives like
// "y mi email es..." are cut off before returning.
func extractStore(text string) string {
	for _, p := range storePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		store := trimStoreTail(m[1])
		if store != "" {
			return store
		}
	}
	return ""
}

func trimStoreTail(s string) string {
	lower := strings.ToLower(s)
	for _, cut := range []string{" y ", " mi ", ", ", ".", " email", " correo"} {
		if i := strings.Index(lower, cut); i >= 0 {
			s, lower = s[:i], lower[:i]
		}
	}
	return strings.TrimSpace(s)
}
