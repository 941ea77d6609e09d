package models

import "time"

// DailyTaskList is the dailyTodoLists/{date} root document. Its prepTasks
// and stockRequisitions sub-collections hold the generated tasks.
type DailyTaskList struct {
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// Task is a generated prep task or stock requisition. Which sub-collection
// it lands in is decided solely by IsStockRequisition on its template.
type Task struct {
	TaskName           string    `json:"taskName"`
	Note               string    `json:"note"`
	IsCompleted        bool      `json:"isCompleted"`
	DishName           string    `json:"dishName"`
	Category           string    `json:"category,omitempty"`
	IsStockRequisition bool      `json:"isStockRequisition,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}
