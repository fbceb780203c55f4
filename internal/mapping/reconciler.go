package mapping

import "github.com/Rrens/deskmap/internal/domain"

// Assignment names the occupant for a single desk after one sync pass.
type Assignment struct {
	DeskID    string
	FirstName string
	LastName  string
}

// Result is the outcome of one reconciliation pass. It is total over the
// input desk set: every desk absent from Assignments must be treated as
// vacated by the caller.
type Result struct {
	Assignments    []Assignment
	UnmatchedUsers int
}

// Reconcile assigns at most one directory user per desk. Users are
// processed in directory order; the first user resolving to a desk number
// claims that desk and later users resolving to the same number are
// skipped. Users whose office location yields no desk number count toward
// UnmatchedUsers. A user resolving to a number with no matching desk is
// skipped without error.
func Reconcile(users []domain.DirectoryUser, desks []domain.Desk, rule Rule) Result {
	deskByNumber := make(map[int]domain.Desk, len(desks))
	for _, d := range desks {
		deskByNumber[d.Number] = d
	}

	claimed := make(map[string]struct{})
	result := Result{}

	for _, user := range users {
		number, ok := MatchDeskNumber(user.OfficeLocation, rule)
		if !ok {
			result.UnmatchedUsers++
			continue
		}
		desk, found := deskByNumber[number]
		if !found {
			continue
		}
		if _, taken := claimed[desk.ID]; taken {
			continue
		}
		claimed[desk.ID] = struct{}{}

		firstName := user.GivenName
		if firstName == "" {
			firstName = user.DisplayName
		}
		result.Assignments = append(result.Assignments, Assignment{
			DeskID:    desk.ID,
			FirstName: firstName,
			LastName:  user.Surname,
		})
	}

	return result
}
