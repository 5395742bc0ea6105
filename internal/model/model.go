package model

import "strings"

// Domain is the coarse category tag shared by alerts and todos.
type Domain string

const (
	DomainPortfolio  Domain = "portfolio"
	DomainRetirement Domain = "retirement"
	DomainResearch   Domain = "research"
	DomainSystem     Domain = "system"
)

// AllDomains returns the known domains in canonical order.
func AllDomains() []Domain {
	return []Domain{DomainPortfolio, DomainRetirement, DomainResearch, DomainSystem}
}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	for _, k := range AllDomains() {
		if d == k {
			return true
		}
	}
	return false
}

// Label is the display form used in filter bars ("portfolio" -> "Portfolio").
func (d Domain) Label() string {
	if d == "" {
		return "All Domains"
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Action is a status transition the user may request for an item.
type Action struct {
	Key    string
	Label  string
	Target string
}
