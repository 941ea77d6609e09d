package triggers

import (
	"context"
	"fmt"
	"time"

	"mercato-backend/logger"
	"mercato-backend/models"
	"mercato-backend/store"

	"github.com/google/uuid"
)

// RegisterNotificationFanout subscribes the in-app notification fan-out to
// stock requisition creation: every kitchen staff and admin user gets one
// notification document, written as a single all-or-nothing batch.
//
// Fan-out does not deduplicate: if the same requisition is delivered twice
// (a list regenerated for the same date), users are notified twice.
func RegisterNotificationFanout(d *Dispatcher, st store.Store) {
	log := logger.WithComponent("notification-fanout")

	d.Register("dailyTodoLists/{date}/stockRequisitions/{reqId}", store.ChangeCreated,
		func(ctx context.Context, ev Event) error {
			users, err := st.Documents(ctx, models.ColUsers,
				store.Where("role", "in", []string{models.RoleKitchenStaff, models.RoleAdmin}))
			if err != nil {
				return fmt.Errorf("querying users: %w", err)
			}
			if len(users) == 0 {
				log.Debug().Str("requisition", ev.Path).Msg("no users to notify")
				return nil
			}

			taskName, _ := ev.After["taskName"].(string)
			if taskName == "" {
				taskName = "A new item"
			}

			notification := models.Notification{
				Title:         "New Stock Requisition",
				Body:          fmt.Sprintf("%s was added to the stock requisition list.", taskName),
				RequisitionID: ev.Params["reqId"],
				CreatedAt:     time.Now().UTC(),
			}
			data, err := store.DataFrom(notification)
			if err != nil {
				return err
			}

			writes := make([]store.Write, 0, len(users))
			for _, u := range users {
				path := fmt.Sprintf("%s/%s", models.NotificationsCollection(u.ID()), uuid.NewString())
				writes = append(writes, store.Set(path, data))
			}
			if err := st.BatchWrite(ctx, writes); err != nil {
				return fmt.Errorf("writing notifications: %w", err)
			}

			log.Info().Int("users", len(users)).Str("requisition", ev.Path).Msg("notified users")
			return nil
		})
}
