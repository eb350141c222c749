/*
helpers_test.go - Encoding helper tests

In-package so the unexported scan helpers are reachable.
*/
package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_RejectsCorruptValues(t *testing.T) {
	// GIVEN a well-formed stored date
	got, err := parseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())

	// WHEN the stored text is not an ISO date
	_, err = parseDate("31/01/2024")

	// THEN the error surfaces instead of a silent zero value
	assert.Error(t, err)
}

func TestScanNullDate(t *testing.T) {
	// NULL scans to nil without error
	got, err := scanNullDate(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, got)

	// A corrupt value is an error, not a zero date
	_, err = scanNullDate(sql.NullString{String: "soon", Valid: true})
	assert.Error(t, err)
}
