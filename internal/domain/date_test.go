package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviousDay(t *testing.T) {
	assert.Equal(t, "2024-05-31", PreviousDay("2024-06-01"), "month boundary")
	assert.Equal(t, "2023-12-31", PreviousDay("2024-01-01"), "year boundary")
	assert.Equal(t, "2024-02-29", PreviousDay("2024-03-01"), "leap day")
	assert.Equal(t, "2023-02-28", PreviousDay("2023-03-01"))
	assert.Equal(t, "", PreviousDay("June 1st"), "malformed dates never match anything")
	assert.Equal(t, "", PreviousDay(""))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-06-01"))
	assert.False(t, ValidDate("2024-6-1"))
	assert.False(t, ValidDate("2024-13-01"))
	assert.False(t, ValidDate(""))
}

func TestOrganizationFromEmail(t *testing.T) {
	assert.Equal(t, "acme", OrganizationFromEmail("ada@acme.com"))
	assert.Equal(t, "acme", OrganizationFromEmail("ada@ACME.co.uk"))
	assert.Equal(t, "x", OrganizationFromEmail("a@x.com"))
	assert.Equal(t, "localhost", OrganizationFromEmail("root@localhost"))
	assert.Equal(t, "", OrganizationFromEmail("not-an-email"))
	assert.Equal(t, "", OrganizationFromEmail("trailing@"))
}
