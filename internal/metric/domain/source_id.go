package domain

import "strings"

// SourceID is the canonical identity of where a number came from: an account,
// optionally narrowed to one product. The serialized form is
// "accountID::projectID" with an empty project part for account-level sources,
// so it round-trips and can be used as a map key.
type SourceID struct {
	AccountID string `json:"account_id"`
	ProjectID string `json:"project_id,omitempty"`
}

const sourceIDSep = "::"

func BuildSourceID(accountID, projectID string) string {
	return accountID + sourceIDSep + projectID
}

func ParseSourceID(key string) SourceID {
	accountID, projectID, found := strings.Cut(key, sourceIDSep)
	if !found {
		return SourceID{AccountID: key}
	}
	return SourceID{AccountID: accountID, ProjectID: projectID}
}

func (s SourceID) String() string {
	return BuildSourceID(s.AccountID, s.ProjectID)
}

// IsAccountLevel reports whether the source is a whole account rather than a
// single product.
func (s SourceID) IsAccountLevel() bool {
	return s.ProjectID == ""
}
