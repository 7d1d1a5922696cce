package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeMeaning(t *testing.T) {
	tests := []struct {
		column string
		want   string
	}{
		{"email_address", "email address"},
		{"cust_nm", "cust name"},
		{"home_addr", "home address"},
		{"tel_no", "phone number"},
		{"dob", "birth date"},
		{"firstName", "first name"},
		{"graduation-date", "graduation date"},
		{"Student ID", "student id"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeMeaning(tt.column))
		})
	}
}

func TestIsPII(t *testing.T) {
	assert.True(t, IsPII("email address"))
	assert.True(t, IsPII("cust name"))
	assert.True(t, IsPII("birth date"))
	assert.False(t, IsPII("course name"))
	assert.False(t, IsPII("graduation date"))
	assert.False(t, IsPII("id"))
}

func TestSuggestFields(t *testing.T) {
	cols := []string{"name", "email_address", "course", "cohort", "graduation_date", "tel", "file_name"}

	got := SuggestFields(cols)
	assert.Equal(t, []string{"name", "email_address", "tel"}, Columns(got))
	assert.Equal(t, "phone", got[2].Category)
	assert.Equal(t, "email address", got[1].Meaning)

	assert.Empty(t, SuggestFields([]string{"course", "cohort"}))
}
