package schema

import (
	"strings"
	"unicode"
)

var abbreviations = map[string]string{
	// Common Nouns
	"nm": "name", "fnm": "first name", "lnm": "last name", "fname": "first name", "lname": "last name",
	"dt": "date", "no": "number", "num": "number", "cd": "code",
	"desc": "description", "amt": "amount", "cnt": "count", "qty": "quantity",
	"addr": "address", "tel": "phone", "hp": "phone", "ph": "phone", "mob": "phone", "cell": "phone",
	"mail": "email", "eml": "email", "pwd": "password", "passwd": "password", "pw": "password",
	"zip": "zipcode", "post": "zipcode", "postcode": "zipcode",
	"dob": "birth date", "bday": "birth date", "birthday": "birth date",
	"ssn": "national id", "nin": "national id", "nino": "national id", "passport": "passport",
	"ip": "ip", "usr": "user", "emp": "employee", "dept": "department", "grp": "group",
	"loc": "location", "lat": "latitude", "lng": "longitude", "lon": "longitude",
	"st": "street", "prov": "province", "dist": "district",
	"grad": "graduation", "crs": "course",
	"id": "id", "uid": "id", "pid": "id", "idx": "index",

	// Verbs / Status
	"reg": "registered", "mod": "modified", "del": "deleted", "cre": "created",
	"upd": "updated", "yn": "yesno", "stat": "status", "sts": "status",
	"typ": "type", "val": "value", "flg": "flag",
}

// piiTerms are the meanings that identify a person on their own.
var piiTerms = map[string]string{
	"name":     "name",
	"email":    "email",
	"phone":    "phone",
	"address":  "address",
	"street":   "address",
	"zipcode":  "zipcode",
	"birth":    "birth date",
	"national": "national id",
	"passport": "passport",
	"ip":       "ip",
	"password": "password",
	"latitude": "location",
	"iban":     "bank account",
	"card":     "card",
}

// nonPersonal names that end in a PII term but describe something else,
// e.g. "course_name" or "file_name".
var nonPersonal = map[string]bool{
	"course": true, "file": true, "table": true, "host": true, "product": true,
	"company": true, "column": true, "project": true, "bucket": true, "domain": true,
}

// AnalyzeMeaning splits a column name on underscores, dashes, spaces and
// camelCase boundaries, expands known abbreviations and returns the
// lowercase words joined by a space.
func AnalyzeMeaning(column string) string {
	var decoded []string
	for _, part := range splitWords(column) {
		if full, ok := abbreviations[part]; ok {
			decoded = append(decoded, full)
		} else {
			decoded = append(decoded, part)
		}
	}
	return strings.Join(decoded, " ")
}

// IsPII reports whether a meaning returned by AnalyzeMeaning describes
// personal data.
func IsPII(meaning string) bool {
	_, ok := piiCategory(meaning)
	return ok
}

func piiCategory(meaning string) (string, bool) {
	words := strings.Fields(meaning)
	for i, w := range words {
		cat, ok := piiTerms[w]
		if !ok {
			continue
		}
		if i > 0 && nonPersonal[words[i-1]] {
			continue
		}
		return cat, true
	}
	return "", false
}

type Suggestion struct {
	Column   string `json:"column"`
	Meaning  string `json:"meaning"`
	Category string `json:"category"`
}

// SuggestFields returns the columns that look like personal data, in the
// order given.
func SuggestFields(columns []string) []Suggestion {
	var out []Suggestion
	for _, c := range columns {
		meaning := AnalyzeMeaning(c)
		if cat, ok := piiCategory(meaning); ok {
			out = append(out, Suggestion{Column: c, Meaning: meaning, Category: cat})
		}
	}
	return out
}

// Columns flattens suggestions into a field list usable as pii_fields.
func Columns(s []Suggestion) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].Column
	}
	return out
}

func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(rs[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}
