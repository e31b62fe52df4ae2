package seed

const seedTimestamp = "2024-01-01T00:00:00.000Z"

type companyDef struct {
	name         string
	domain       string
	city         string
	state        string
	country      string
	employees    int
	revenue      int
	founded      int
	industries   []string
	technologies []string
	keywords     []string
}

var companies = []companyDef{
	{
		name: "Northwind Analytics", domain: "northwind.example", city: "Leeds", state: "West Yorkshire", country: "United Kingdom",
		employees: 240, revenue: 32000000, founded: 2011,
		industries: []string{"SaaS", "Analytics"}, technologies: []string{"Go", "PostgreSQL", "Kubernetes"},
		keywords: []string{"business intelligence", "dashboards"},
	},
	{
		name: "Blue Harbor Logistics", domain: "blueharbor.example", city: "Rotterdam", state: "South Holland", country: "Netherlands",
		employees: 1800, revenue: 410000000, founded: 1994,
		industries: []string{"Logistics"}, technologies: []string{"SAP", "Java"},
		keywords: []string{"freight", "shipping"},
	},
	{
		name: "Lumen Health", domain: "lumenhealth.example", city: "Austin", state: "Texas", country: "United States",
		employees: 75, revenue: 6500000, founded: 2019,
		industries: []string{"Healthcare", "SaaS"}, technologies: []string{"Python", "AWS"},
		keywords: []string{"telemedicine"},
	},
	{
		name: "Copperleaf Finance", domain: "copperleaf.example", city: "Toronto", state: "Ontario", country: "Canada",
		employees: 520, revenue: 88000000, founded: 2005,
		industries: []string{"Fintech"}, technologies: []string{"Go", "Kafka", "Redis"},
		keywords: []string{"payments", "lending"},
	},
}

func (c companyDef) id() string {
	return stableID("company", c.domain)
}

func (c companyDef) record() map[string]any {
	return map[string]any{
		"uuid":            c.id(),
		"name":            c.name,
		"domain":          c.domain,
		"website":         "https://www." + c.domain,
		"city":            c.city,
		"state":           c.state,
		"country":         c.country,
		"employees_count": c.employees,
		"annual_revenue":  c.revenue,
		"founded_year":    c.founded,
		"industries":      c.industries,
		"technologies":    c.technologies,
		"keywords":        c.keywords,
		"created_at":      seedTimestamp,
	}
}

// companyColumns returns the denormalized company_* columns carried on
// contacts.
func (c companyDef) companyColumns() map[string]any {
	return map[string]any{
		"company_id":              c.id(),
		"company_name":            c.name,
		"company_domain":          c.domain,
		"company_city":            c.city,
		"company_state":           c.state,
		"company_country":         c.country,
		"company_employees_count": c.employees,
		"company_annual_revenue":  c.revenue,
		"company_industries":      c.industries,
		"company_technologies":    c.technologies,
	}
}
