package models

type Member struct {
	ID         int64  `json:"-" bson:"-" gorm:"primaryKey;autoIncrement"`
	CategoryID int64  `json:"-" bson:"-" gorm:"index"`
	UserID     int64  `json:"userId" bson:"user_id"`
	Username   string `json:"username" bson:"username"`
}
