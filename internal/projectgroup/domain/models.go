package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Member points at one source inside a group. A member without a project id
// covers the whole account.
type Member struct {
	AccountID string `json:"account_id"`
	ProjectID string `json:"project_id,omitempty"`
}

// ProjectGroup folds several sources into one named line on the dashboard,
// e.g. the Stripe and Gumroad listings of the same product.
type ProjectGroup struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"not null" json:"name"`
	Members   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"members"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProjectGroup) TableName() string { return "project_groups" }

func (g ProjectGroup) MemberList() ([]Member, error) {
	if len(g.Members) == 0 {
		return nil, nil
	}
	var members []Member
	if err := json.Unmarshal(g.Members, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func MarshalMembers(members []Member) (datatypes.JSON, error) {
	if members == nil {
		members = []Member{}
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
