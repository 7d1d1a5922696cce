package engine

var (
	Courses = []string{
		"Software", "Data", "Cloud", "DevOps", "Cyber Security", "Data Engineering",
		"Machine Learning", "Java", "Python", "JavaScript", "Golang",
	}
	Cohorts = []string{"Launchpad", "Foundations", "Bootcamp", "Evening", "Part-Time"}
)

// StudentColumns are the columns of a generated student dataset, after the
// leading id column.
var StudentColumns = []string{"name", "email_address", "phone", "address", "course", "graduation_date"}
