package models

type UserType string

const (
	UserFree    UserType = "free"
	UserPro     UserType = "pro"
	UserProPlus UserType = "pro+"
)

type User struct {
	ID       int64    `json:"id" bson:"_id" gorm:"primaryKey"`
	Username string   `json:"username" bson:"username"`
	Type     UserType `json:"type" bson:"type"`
}

// EligibleForGroups reports whether the user's tier allows membership in
// group categories. Free accounts are excluded.
func (u User) EligibleForGroups() bool {
	return u.Type == UserPro || u.Type == UserProPlus
}
