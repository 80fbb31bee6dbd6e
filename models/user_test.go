package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_FullName(t *testing.T) {
	// Create users with and without a last name
	user1 := &User{ID: 1, FirstName: "Ada", LastName: "Lovelace"}
	user2 := &User{ID: 2, FirstName: "Ada"}

	// Check that both names are joined when present
	result1 := user1.FullName()
	assert.Equal(t, "Ada Lovelace", result1, "both names should be joined with a space")

	// Check that a missing last name yields the first name alone
	result2 := user2.FullName()
	assert.Equal(t, "Ada", result2, "the first name alone should be returned")
}
