package transform

import (
	"strings"

	"github.com/johnwards/leadsearch/internal/domain"
)

// contactFields is the record-level part shared by both contact views.
type contactFields struct {
	rec          record
	departments  []string
	employees    *int64
	revenue      *int64
	industries   []string
	technologies []string
}

func readContact(raw []byte) (contactFields, error) {
	rec, err := parseRecord(raw)
	if err != nil {
		return contactFields{}, err
	}
	c := contactFields{rec: rec}
	if c.departments, err = rec.list("departments"); err != nil {
		return contactFields{}, err
	}
	if c.employees, err = rec.relatedInt("employees_count"); err != nil {
		return contactFields{}, err
	}
	if c.revenue, err = rec.relatedInt("annual_revenue"); err != nil {
		return contactFields{}, err
	}
	if c.industries, err = rec.relatedList("industries"); err != nil {
		return contactFields{}, err
	}
	if c.technologies, err = rec.relatedList("technologies"); err != nil {
		return contactFields{}, err
	}
	return c, nil
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// ContactListItem maps a raw contact into its list row.
func ContactListItem(raw []byte) (domain.ContactListItem, error) {
	c, err := readContact(raw)
	if err != nil {
		return domain.ContactListItem{}, err
	}
	r := c.rec
	return domain.ContactListItem{
		UUID:                 r.str("uuid"),
		FirstName:            r.str("first_name"),
		LastName:             r.str("last_name"),
		Name:                 fullName(r.str("first_name"), r.str("last_name")),
		Email:                r.str("email"),
		EmailStatus:          r.str("email_status"),
		Title:                r.str("title"),
		Seniority:            r.str("seniority"),
		Departments:          joined(c.departments),
		MobilePhone:          r.str("mobile_phone"),
		City:                 r.str("city"),
		State:                r.str("state"),
		Country:              r.str("country"),
		LinkedInURL:          r.str("linkedin_url"),
		CreatedAt:            r.str("created_at"),
		CompanyID:            r.companyID(),
		CompanyName:          r.relatedStr("name"),
		CompanyDomain:        r.relatedStr("domain"),
		CompanyCity:          r.relatedStr("city"),
		CompanyState:         r.relatedStr("state"),
		CompanyCountry:       r.relatedStr("country"),
		CompanyEmployees:     c.employees,
		CompanyAnnualRevenue: c.revenue,
		CompanyIndustry:      firstOf(c.industries),
		CompanyTechnologies:  joined(c.technologies),
	}, nil
}

// ContactDetail maps a raw contact into the full view.
func ContactDetail(raw []byte) (domain.ContactDetail, error) {
	c, err := readContact(raw)
	if err != nil {
		return domain.ContactDetail{}, err
	}
	r := c.rec
	return domain.ContactDetail{
		UUID:                 r.str("uuid"),
		FirstName:            r.str("first_name"),
		LastName:             r.str("last_name"),
		Name:                 fullName(r.str("first_name"), r.str("last_name")),
		Email:                r.str("email"),
		EmailStatus:          r.str("email_status"),
		Title:                r.str("title"),
		Seniority:            r.str("seniority"),
		Departments:          c.departments,
		MobilePhone:          r.str("mobile_phone"),
		City:                 r.str("city"),
		State:                r.str("state"),
		Country:              r.str("country"),
		LinkedInURL:          r.str("linkedin_url"),
		CreatedAt:            r.str("created_at"),
		CompanyID:            r.companyID(),
		CompanyName:          r.relatedStr("name"),
		CompanyDomain:        r.relatedStr("domain"),
		CompanyCity:          r.relatedStr("city"),
		CompanyState:         r.relatedStr("state"),
		CompanyCountry:       r.relatedStr("country"),
		CompanyEmployees:     c.employees,
		CompanyAnnualRevenue: c.revenue,
		CompanyIndustry:      firstOf(c.industries),
		CompanyIndustries:    c.industries,
		CompanyTechnologies:  c.technologies,
	}, nil
}
