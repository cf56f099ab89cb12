package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyListZeroValueUnresolved(t *testing.T) {
	var l CompanyList
	assert.False(t, l.Resolved())
	assert.Empty(t, l.Names())
}

func TestResolvedEmptyDistinctFromUnresolved(t *testing.T) {
	unresolved := UnresolvedCompanies()
	resolvedEmpty := ResolvedCompanies(nil)

	assert.False(t, unresolved.Resolved())
	assert.True(t, resolvedEmpty.Resolved())
	assert.NotNil(t, resolvedEmpty.Names())
	assert.Empty(t, resolvedEmpty.Names())
}

func TestResolvedNames(t *testing.T) {
	l := ResolvedCompanies([]string{"acme", "globex"})
	assert.True(t, l.Resolved())
	assert.Equal(t, []string{"acme", "globex"}, l.Names())
}

func TestNamesMutationDoesNotAlterList(t *testing.T) {
	l := ResolvedCompanies([]string{"acme", "globex"})

	names := l.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"acme", "globex"}, l.Names())
}
