package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gdpr-obfuscator/internal/reference"
	"gdpr-obfuscator/internal/schema"
	"gdpr-obfuscator/internal/tabular"

	"github.com/brianvoe/gofakeit/v6"
)

// IDColumn leads every generated dataset so that a CSV written from it keeps
// the id as its index column when loaded again.
const IDColumn = "id"

// Generator produces fake datasets whose values follow the meaning of each
// column name.
type Generator struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewGenerator returns a Generator. A zero seed picks a random one.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: time.Now()}
}

// GenerateStudents builds n rows of student data in the shape the obfuscator
// is usually pointed at.
func (g *Generator) GenerateStudents(n int, onProgress func()) *tabular.Dataset {
	ds, err := g.Generate(reference.FormatCSV, StudentColumns, n, onProgress)
	if err != nil {
		// StudentColumns are distinct, so NewDataset cannot fail.
		panic(err)
	}
	return ds
}

// Generate builds n rows for columns, preceded by a sequential id column.
// onProgress, when set, is called once per row.
func (g *Generator) Generate(format reference.Format, columns []string, n int, onProgress func()) (*tabular.Dataset, error) {
	all := append([]string{IDColumn}, columns...)
	ds, err := tabular.NewDataset(format, "", all)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		id := strconv.Itoa(i + 1)
		values := make([]tabular.Value, 0, len(all))
		values = append(values, tabular.NumberValue(id))
		for _, c := range columns {
			values = append(values, g.Value(c))
		}
		if err := ds.Append(id, values...); err != nil {
			return nil, fmt.Errorf("failed to append row %s: %w", id, err)
		}
		if onProgress != nil {
			onProgress()
		}
	}
	return ds, nil
}

// Value generates a random value based on the column name.
func (g *Generator) Value(column string) tabular.Value {
	colName := strings.ToLower(column)
	meaning := schema.AnalyzeMeaning(column)
	words := strings.Fields(meaning)
	has := func(s string) bool { return containsWords(words, strings.Fields(s)) }

	isID := meaning == "id" || strings.HasSuffix(meaning, " id")

	switch {
	case isID:
		return tabular.NumberValue(strconv.Itoa(g.faker.Number(1, 50000)))
	case has("email"):
		return tabular.StringValue(g.faker.Email())
	case has("phone"):
		return tabular.StringValue(g.faker.Phone())
	case has("zipcode"):
		return tabular.StringValue(g.faker.Zip())
	case has("address"):
		return tabular.StringValue(g.faker.Address().Address)
	case has("city"):
		return tabular.StringValue(g.faker.City())
	case has("country"):
		return tabular.StringValue(g.faker.Country())
	case has("course"):
		return tabular.StringValue(g.faker.RandomString(Courses))
	case has("cohort"):
		return tabular.StringValue(g.faker.RandomString(Cohorts))
	case has("birth"):
		d := g.faker.DateRange(g.now.AddDate(-60, 0, 0), g.now.AddDate(-18, 0, 0))
		return tabular.StringValue(d.Format("2006-01-02"))
	case has("date") || has("time"):
		d := g.faker.DateRange(g.now.AddDate(-2, 0, 0), g.now.AddDate(1, 0, 0))
		return tabular.StringValue(d.Format("2006-01-02"))
	case has("first name"):
		return tabular.StringValue(g.faker.FirstName())
	case has("last name"):
		return tabular.StringValue(g.faker.LastName())
	case has("name"):
		return tabular.StringValue(g.faker.Name())
	case has("ip"):
		return tabular.StringValue(g.faker.IPv4Address())
	case has("yesno") || has("flag") || strings.HasPrefix(colName, "is_"):
		return tabular.BoolValue(g.faker.Bool())
	case has("amount") || has("price") || has("balance"):
		return tabular.NumberValue(strconv.FormatFloat(g.faker.Price(0.99, 999.99), 'f', 2, 64))
	case has("count") || has("quantity") || has("number"):
		return tabular.NumberValue(strconv.Itoa(g.faker.Number(0, 1000)))
	case has("description") || has("comment") || has("text"):
		return tabular.StringValue(g.faker.Sentence(8))
	default:
		return tabular.StringValue(g.faker.Word())
	}
}

// containsWords reports whether phrase appears in words as a run of whole
// words, so "ip" matches "ip address" but not "shipping".
func containsWords(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
