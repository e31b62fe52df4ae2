package domain

// ContactListItem is the flattened contact row returned by list endpoints.
// List-valued fields are joined into a single display string.
type ContactListItem struct {
	UUID                 string  `json:"uuid"`
	FirstName            string  `json:"first_name"`
	LastName             string  `json:"last_name"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	EmailStatus          string  `json:"email_status"`
	Title                string  `json:"title"`
	Seniority            string  `json:"seniority"`
	Departments          string  `json:"departments"`
	MobilePhone          string  `json:"mobile_phone"`
	City                 string  `json:"city"`
	State                string  `json:"state"`
	Country              string  `json:"country"`
	LinkedInURL          string  `json:"linkedin_url"`
	CreatedAt            string  `json:"created_at"`
	CompanyID            string  `json:"company_id"`
	CompanyName          string  `json:"company_name"`
	CompanyDomain        string  `json:"company_domain"`
	CompanyCity          string  `json:"company_city"`
	CompanyState         string  `json:"company_state"`
	CompanyCountry       string  `json:"company_country"`
	CompanyEmployees     *int64  `json:"company_employees_count"`
	CompanyAnnualRevenue *int64  `json:"company_annual_revenue"`
	CompanyIndustry      *string `json:"company_industry"`
	CompanyTechnologies  string  `json:"company_technologies"`
}

// ContactDetail is the full contact view. List-valued fields stay lists and
// are never nil.
type ContactDetail struct {
	UUID                 string   `json:"uuid"`
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	EmailStatus          string   `json:"email_status"`
	Title                string   `json:"title"`
	Seniority            string   `json:"seniority"`
	Departments          []string `json:"departments"`
	MobilePhone          string   `json:"mobile_phone"`
	City                 string   `json:"city"`
	State                string   `json:"state"`
	Country              string   `json:"country"`
	LinkedInURL          string   `json:"linkedin_url"`
	CreatedAt            string   `json:"created_at"`
	CompanyID            string   `json:"company_id"`
	CompanyName          string   `json:"company_name"`
	CompanyDomain        string   `json:"company_domain"`
	CompanyCity          string   `json:"company_city"`
	CompanyState         string   `json:"company_state"`
	CompanyCountry       string   `json:"company_country"`
	CompanyEmployees     *int64   `json:"company_employees_count"`
	CompanyAnnualRevenue *int64   `json:"company_annual_revenue"`
	CompanyIndustry      *string  `json:"company_industry"`
	CompanyIndustries    []string `json:"company_industries"`
	CompanyTechnologies  []string `json:"company_technologies"`
}

// CompanyListItem is the flattened company row returned by list endpoints.
type CompanyListItem struct {
	UUID           string  `json:"uuid"`
	Name           string  `json:"name"`
	Domain         string  `json:"domain"`
	Website        string  `json:"website"`
	Phone          string  `json:"phone"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Country        string  `json:"country"`
	EmployeesCount *int64  `json:"employees_count"`
	AnnualRevenue  *int64  `json:"annual_revenue"`
	FoundedYear    *int64  `json:"founded_year"`
	Industry       *string `json:"industry"`
	Industries     string  `json:"industries"`
	Technologies   string  `json:"technologies"`
	Keywords       string  `json:"keywords"`
	LinkedInURL    string  `json:"linkedin_url"`
	CreatedAt      string  `json:"created_at"`
}

// CompanyDetail is the full company view.
type CompanyDetail struct {
	UUID           string   `json:"uuid"`
	Name           string   `json:"name"`
	Domain         string   `json:"domain"`
	Website        string   `json:"website"`
	Phone          string   `json:"phone"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Country        string   `json:"country"`
	EmployeesCount *int64   `json:"employees_count"`
	AnnualRevenue  *int64   `json:"annual_revenue"`
	FoundedYear    *int64   `json:"founded_year"`
	Industry       *string  `json:"industry"`
	Industries     []string `json:"industries"`
	Technologies   []string `json:"technologies"`
	Keywords       []string `json:"keywords"`
	LinkedInURL    string   `json:"linkedin_url"`
	CreatedAt      string   `json:"created_at"`
}
