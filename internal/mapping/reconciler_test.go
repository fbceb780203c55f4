package mapping

import (
	"fmt"
	"testing"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desk(id string, number int) domain.Desk {
	return domain.Desk{ID: id, Number: number, X: 10, Y: 10, Width: 10, Height: 10}
}

func TestReconcile_FirstUserWins(t *testing.T) {
	desks := []domain.Desk{desk("d5", 5)}
	users := []domain.DirectoryUser{
		{ID: "a", GivenName: "Alice", Surname: "Archer", OfficeLocation: "Desk-5"},
		{ID: "b", GivenName: "Bob", Surname: "Barker", OfficeLocation: "Desk-5"},
	}
	rule := Rule{Prefix: "Desk-"}

	// Tie-break must be deterministic across repeated runs.
	for i := 0; i < 10; i++ {
		result := Reconcile(users, desks, rule)
		require.Len(t, result.Assignments, 1)
		assert.Equal(t, "d5", result.Assignments[0].DeskID)
		assert.Equal(t, "Alice", result.Assignments[0].FirstName)
		assert.Equal(t, "Archer", result.Assignments[0].LastName)
		assert.Equal(t, 0, result.UnmatchedUsers)
	}
}

func TestReconcile_UnmatchedUsers(t *testing.T) {
	desks := []domain.Desk{desk("d1", 1)}
	users := []domain.DirectoryUser{
		{ID: "a", GivenName: "Alice", OfficeLocation: "Desk-1"},
		{ID: "b", GivenName: "Bob", OfficeLocation: "Remote"},
		{ID: "c", GivenName: "Cara", OfficeLocation: ""},
	}

	result := Reconcile(users, desks, Rule{Prefix: "Desk-"})
	assert.Len(t, result.Assignments, 1)
	assert.Equal(t, 2, result.UnmatchedUsers)
}

func TestReconcile_UnknownDeskNumberSkipped(t *testing.T) {
	desks := []domain.Desk{desk("d1", 1)}
	users := []domain.DirectoryUser{
		{ID: "a", GivenName: "Alice", OfficeLocation: "Desk-99"},
	}

	result := Reconcile(users, desks, Rule{Prefix: "Desk-"})
	assert.Empty(t, result.Assignments)
	// The location mapped to a number; it just has no desk. That is not
	// an unmatched user.
	assert.Equal(t, 0, result.UnmatchedUsers)
}

func TestReconcile_DisplayNameFallback(t *testing.T) {
	desks := []domain.Desk{desk("d2", 2)}
	users := []domain.DirectoryUser{
		{ID: "a", DisplayName: "Sam Field", OfficeLocation: "Desk-2"},
	}

	result := Reconcile(users, desks, Rule{Prefix: "Desk-"})
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "Sam Field", result.Assignments[0].FirstName)
	assert.Equal(t, "", result.Assignments[0].LastName)
}

func TestReconcile_ResultIsTotalOverDesks(t *testing.T) {
	first := "Old"
	last := "Occupant"
	desks := []domain.Desk{
		desk("d1", 1),
		{ID: "d2", Number: 2, Width: 10, Height: 10, OccupantFirstName: &first, OccupantLastName: &last},
	}
	users := []domain.DirectoryUser{
		{ID: "a", GivenName: "Alice", OfficeLocation: "Desk-2"},
	}

	result := Reconcile(users, desks, Rule{Prefix: "Desk-"})
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "d2", result.Assignments[0].DeskID)
	assert.Equal(t, 0, result.UnmatchedUsers)

	// Desk 1 is absent from the assignments: the caller clears every
	// occupant before applying them, so its previous occupant goes away.
	for _, a := range result.Assignments {
		assert.NotEqual(t, "d1", a.DeskID)
	}
}

func TestReconcile_ManyUsersManyDesks(t *testing.T) {
	var desks []domain.Desk
	for i := 1; i <= 50; i++ {
		desks = append(desks, desk(fmt.Sprintf("d%d", i), i))
	}
	var users []domain.DirectoryUser
	for i := 1; i <= 50; i++ {
		users = append(users, domain.DirectoryUser{
			ID:             fmt.Sprintf("u%d", i),
			GivenName:      fmt.Sprintf("User%d", i),
			OfficeLocation: fmt.Sprintf("Desk-%d", i),
		})
	}

	result := Reconcile(users, desks, Rule{Prefix: "Desk-"})
	assert.Len(t, result.Assignments, 50)
	assert.Equal(t, 0, result.UnmatchedUsers)
}
