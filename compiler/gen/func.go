package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Common initialisms, kept uppercase in generated identifiers.
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB", "LHS", "MAC", "MB",
		"QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "SSO", "TCP",
		"TLS", "TTL", "UI", "UID", "URI", "URL", "UTF8", "UUID", "VM", "XML",
		"XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// addAcronym registers an additional initialism for identifier casing.
func addAcronym(w string) {
	acronyms[w] = struct{}{}
	rules.AddAcronym(w)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

func pascalWords(words []string) string {
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
			continue
		}
		words[i] = rules.Capitalize(w)
	}
	return strings.Join(words, "")
}

// pascal converts a column, table or function name to an exported Go
// identifier.
func pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	return pascalWords(words)
}

// camel converts a name to an unexported Go identifier.
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return strings.ToLower(words[0][:1]) + words[0][1:]
	}
	return strings.ToLower(words[0]) + pascalWords(words[1:])
}

// snake converts an identifier to snake_case.
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// A word boundary sits before an uppercase letter that follows a
		// lowercase one ("userInfo"), or before the last uppercase letter
		// of an acronym run ("HTTPCode").
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// receiver derives a short receiver name from a type name, one letter per
// word: "UserQuery" becomes "uq".
func receiver(s string) string {
	s = strings.TrimLeft(s, "[]*1234567890")
	parts := strings.Split(snake(s), "_")
	r := make([]byte, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			r = append(r, p[0])
		}
	}
	if len(r) == 0 {
		return "_r"
	}
	return string(r)
}

// plural returns the plural form of a word in pascal case.
func plural(s string) string {
	p := rules.Pluralize(s)
	if p == s {
		p += "Slice"
	}
	return p
}

// singular returns the singular form of a word.
func singular(s string) string {
	return rules.Singularize(s)
}
