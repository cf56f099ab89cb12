package entity

// CompanyList is the tri-state company membership relationship. The
// zero value is Unresolved; a resolved list with zero names is a
// distinct, authoritative state and does not trigger another fetch.
type CompanyList struct {
	resolved bool
	names    []string
}

// UnresolvedCompanies returns the unresolved state
func UnresolvedCompanies() CompanyList {
	return CompanyList{}
}

// ResolvedCompanies returns a resolved list, possibly empty
func ResolvedCompanies(names []string) CompanyList {
	if names == nil {
		names = []string{}
	}
	return CompanyList{resolved: true, names: names}
}

// Resolved reports whether the membership has been resolved
func (l CompanyList) Resolved() bool {
	return l.resolved
}

// Names returns a copy of the resolved company names, so callers cannot
// alter the resolved state. It returns an empty slice when unresolved;
// callers that care about the distinction check Resolved first.
func (l CompanyList) Names() []string {
	if !l.resolved {
		return []string{}
	}
	return append([]string{}, l.names...)
}
