package password

import "fmt"

// DefaultBranch is the branch used when none is configured.
const DefaultBranch = "master"

// Identity names a keystore repository: its remote URL and branch.
type Identity struct {
	URL    string
	Branch string
}

// NewIdentity returns the identity of url on branch, defaulting the branch
// to master.
func NewIdentity(url, branch string) Identity {
	if branch == "" {
		branch = DefaultBranch
	}
	return Identity{URL: url, Branch: branch}
}

func (i Identity) String() string {
	return fmt.Sprintf("%s (%s)", i.URL, i.Branch)
}
