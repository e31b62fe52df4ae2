package seed

type contactDef struct {
	firstName   string
	lastName    string
	email       string
	emailStatus string
	title       string
	seniority   string
	departments []string
	city        string
	country     string
	company     int
}

var contacts = []contactDef{
	{"Priya", "Raman", "priya@northwind.example", "verified", "Chief Technology Officer", "c_suite", []string{"engineering"}, "Leeds", "United Kingdom", 0},
	{"Tom", "Ellis", "tom@northwind.example", "verified", "Head of Sales", "head", []string{"sales"}, "Manchester", "United Kingdom", 0},
	{"Sanne", "de Vries", "sanne@blueharbor.example", "guessed", "VP Operations", "vp", []string{"operations"}, "Rotterdam", "Netherlands", 1},
	{"Marcus", "Bell", "marcus@lumenhealth.example", "verified", "Software Engineer", "entry", []string{"engineering", "product"}, "Austin", "United States", 2},
	{"Elena", "Costa", "elena@lumenhealth.example", "unavailable", "Director of Marketing", "director", []string{"marketing"}, "Dallas", "United States", 2},
	{"Hiro", "Tanaka", "hiro@copperleaf.example", "verified", "Chief Financial Officer", "c_suite", []string{"finance"}, "Toronto", "Canada", 3},
}

func (c contactDef) record() map[string]any {
	rec := companies[c.company].companyColumns()
	rec["uuid"] = stableID("contact", c.email)
	rec["first_name"] = c.firstName
	rec["last_name"] = c.lastName
	rec["email"] = c.email
	rec["email_status"] = c.emailStatus
	rec["title"] = c.title
	rec["seniority"] = c.seniority
	rec["departments"] = c.departments
	rec["city"] = c.city
	rec["country"] = c.country
	rec["created_at"] = seedTimestamp
	return rec
}
