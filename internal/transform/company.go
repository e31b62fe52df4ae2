package transform

import "github.com/johnwards/leadsearch/internal/domain"

type companyFields struct {
	rec          record
	employees    *int64
	revenue      *int64
	founded      *int64
	industries   []string
	technologies []string
	keywords     []string
}

func readCompany(raw []byte) (companyFields, error) {
	rec, err := parseRecord(raw)
	if err != nil {
		return companyFields{}, err
	}
	c := companyFields{rec: rec}
	if c.employees, err = rec.int("employees_count"); err != nil {
		return companyFields{}, err
	}
	if c.revenue, err = rec.int("annual_revenue"); err != nil {
		return companyFields{}, err
	}
	if c.founded, err = rec.int("founded_year"); err != nil {
		return companyFields{}, err
	}
	if c.industries, err = rec.list("industries"); err != nil {
		return companyFields{}, err
	}
	if c.technologies, err = rec.list("technologies"); err != nil {
		return companyFields{}, err
	}
	if c.keywords, err = rec.list("keywords"); err != nil {
		return companyFields{}, err
	}
	return c, nil
}

// CompanyListItem maps a raw company into its list row.
func CompanyListItem(raw []byte) (domain.CompanyListItem, error) {
	c, err := readCompany(raw)
	if err != nil {
		return domain.CompanyListItem{}, err
	}
	r := c.rec
	return domain.CompanyListItem{
		UUID:           r.str("uuid"),
		Name:           r.str("name"),
		Domain:         r.str("domain"),
		Website:        r.str("website"),
		Phone:          r.str("phone"),
		City:           r.str("city"),
		State:          r.str("state"),
		Country:        r.str("country"),
		EmployeesCount: c.employees,
		AnnualRevenue:  c.revenue,
		FoundedYear:    c.founded,
		Industry:       firstOf(c.industries),
		Industries:     joined(c.industries),
		Technologies:   joined(c.technologies),
		Keywords:       joined(c.keywords),
		LinkedInURL:    r.str("linkedin_url"),
		CreatedAt:      r.str("created_at"),
	}, nil
}

// CompanyDetail maps a raw company into the full view.
func CompanyDetail(raw []byte) (domain.CompanyDetail, error) {
	c, err := readCompany(raw)
	if err != nil {
		return domain.CompanyDetail{}, err
	}
	r := c.rec
	return domain.CompanyDetail{
		UUID:           r.str("uuid"),
		Name:           r.str("name"),
		Domain:         r.str("domain"),
		Website:        r.str("website"),
		Phone:          r.str("phone"),
		City:           r.str("city"),
		State:          r.str("state"),
		Country:        r.str("country"),
		EmployeesCount: c.employees,
		AnnualRevenue:  c.revenue,
		FoundedYear:    c.founded,
		Industry:       firstOf(c.industries),
		Industries:     c.industries,
		Technologies:   c.technologies,
		Keywords:       c.keywords,
		LinkedInURL:    r.str("linkedin_url"),
		CreatedAt:      r.str("created_at"),
	}, nil
}
