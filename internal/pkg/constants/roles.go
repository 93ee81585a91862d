package constants

// AgriLoop roles. LEARNER has no marketplace capabilities beyond the
// analyzer/learning endpoints; it still gets an account and a session.
const (
	Farmer    = "FARMER"
	Buyer     = "BUYER"
	Household = "HOUSEHOLD"
	Biogas    = "BIOGAS"
	Learner   = "LEARNER"
)

// ValidRoles is the set of allowed role values for a user account.
var ValidRoles = []string{Farmer, Buyer, Household, Biogas, Learner}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
