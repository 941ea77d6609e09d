package models

// Dish is a dishes/{id} source document. Its prepTasks sub-collection holds
// the template tasks copied into the daily list on generation.
type Dish struct {
	DishName string `json:"dishName"`
}

// ChecklistItem is a floor_checklist_items/{id} document: the static
// floor/bar checklist, read-only from the generation workflow.
type ChecklistItem struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}
