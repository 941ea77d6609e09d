// Package triggers replaces the managed platform's implicit write triggers
// with an explicit dispatcher: handlers are registered against a
// (collection pattern, change kind) pair and invoked with the committed
// change once the batch that produced it has been applied.
package triggers

import (
	"context"
	"strings"

	"mercato-backend/logger"
	"mercato-backend/store"
)

// Event is the payload a trigger handler receives: the committed change
// plus the values captured by {param} segments of the pattern it matched.
type Event struct {
	store.Change
	Params map[string]string
}

// Handler reacts to one matching change. Errors are logged, never retried;
// redelivery was a platform property, not this layer's.
type Handler func(ctx context.Context, ev Event) error

type subscription struct {
	pattern string
	kind    store.ChangeKind
	handler Handler
}

// Dispatcher routes committed changes to registered handlers.
type Dispatcher struct {
	subs []subscription
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register subscribes a handler to changes of the given kind on paths
// matching pattern. Pattern segments of the form {name} match any single
// segment and are captured into Event.Params, e.g.
// "dailyTodoLists/{date}/stockRequisitions/{id}".
func (d *Dispatcher) Register(pattern string, kind store.ChangeKind, h Handler) {
	d.subs = append(d.subs, subscription{pattern: pattern, kind: kind, handler: h})
}

// Listener adapts the dispatcher to the store's commit hook.
func (d *Dispatcher) Listener() store.Listener {
	log := logger.WithComponent("triggers")
	return func(ctx context.Context, changes []store.Change) {
		for _, change := range changes {
			for _, sub := range d.subs {
				if sub.kind != change.Kind {
					continue
				}
				params, ok := matchPattern(sub.pattern, change.Path)
				if !ok {
					continue
				}
				if err := sub.handler(ctx, Event{Change: change, Params: params}); err != nil {
					log.Error().Err(err).
						Str("path", change.Path).
						Str("kind", change.Kind.String()).
						Msg("trigger handler failed")
				}
			}
		}
	}
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	pSegs := strings.Split(pattern, "/")
	segs := strings.Split(path, "/")
	if len(pSegs) != len(segs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, p := range pSegs {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			params[p[1:len(p)-1]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}
