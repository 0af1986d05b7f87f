package models

type CategoryType string

const (
	CategoryPersonal CategoryType = "personal"
	CategoryGroup    CategoryType = "group"
)

type Category struct {
	ID        int64        `json:"id" bson:"_id" gorm:"primaryKey;autoIncrement"`
	CreatorID int64        `json:"creatorId" bson:"creator_id" gorm:"index"`
	Name      string       `json:"name" bson:"name"`
	Type      CategoryType `json:"type" bson:"type"`
	// Members is present only for group categories; personal categories
	// keep it nil so AddMember stays a no-op on them.
	Members []Member `json:"members,omitempty" bson:"members,omitempty" gorm:"foreignKey:CategoryID"`
}

// HasMember reports whether userID appears in the member list. The creator
// is not implicitly a member; callers that grant creator rights must check
// CreatorID themselves.
func (c *Category) HasMember(userID int64) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
