package models

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ValidPriority reports whether p is one of the fixed priority labels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Task struct {
	ID         int64     `json:"id" bson:"_id" gorm:"primaryKey;autoIncrement"`
	CategoryID int64     `json:"categoryId" bson:"category_id" gorm:"index"`
	CreatorID  int64     `json:"creatorId" bson:"creator_id"`
	Name       string    `json:"name" bson:"name"`
	DueDate    string    `json:"dueDate" bson:"due_date"`
	Priority   Priority  `json:"priority" bson:"priority"`
	SubTasks   []SubTask `json:"subTask,omitempty" bson:"sub_tasks,omitempty" gorm:"foreignKey:TaskID"`
}

// SubTask carries its own due date and priority, independent of the parent.
type SubTask struct {
	ID       int64    `json:"id" bson:"id" gorm:"primaryKey;autoIncrement"`
	TaskID   int64    `json:"-" bson:"-" gorm:"index"`
	Name     string   `json:"name" bson:"name"`
	DueDate  string   `json:"dueDate" bson:"due_date"`
	Priority Priority `json:"priority" bson:"priority"`
}
