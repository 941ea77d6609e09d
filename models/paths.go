package models

import "fmt"

// Top-level collections, matching the persisted layout of the original
// deployment so exported data can be imported unchanged.
const (
	ColDailyLists     = "dailyTodoLists"
	ColDishes         = "dishes"
	ColFloorChecklist = "floor_checklist_items"
	ColUsers          = "users"
	ColInventory      = "inventoryItems"
	ColSuggestions    = "dailyOrderingSuggestions"
)

// Sub-collection names.
const (
	SubPrepTasks         = "prepTasks"
	SubStockRequisitions = "stockRequisitions"
	SubNotifications     = "notifications"
	SubSuggestions       = "suggestions"
)

func DailyListPath(date string) string {
	return fmt.Sprintf("%s/%s", ColDailyLists, date)
}

func PrepTasksCollection(date string) string {
	return fmt.Sprintf("%s/%s/%s", ColDailyLists, date, SubPrepTasks)
}

func StockRequisitionsCollection(date string) string {
	return fmt.Sprintf("%s/%s/%s", ColDailyLists, date, SubStockRequisitions)
}

func UserPath(uid string) string {
	return fmt.Sprintf("%s/%s", ColUsers, uid)
}

func NotificationsCollection(uid string) string {
	return fmt.Sprintf("%s/%s/%s", ColUsers, uid, SubNotifications)
}

func SuggestionsCollection(date string) string {
	return fmt.Sprintf("%s/%s/%s", ColSuggestions, date, SubSuggestions)
}
