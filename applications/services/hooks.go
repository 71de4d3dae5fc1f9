package services

import (
	"context"
	"fmt"
	"strings"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ApplicationHook reacts to a stored application after a workflow
// succeeded. Its failure never undoes the workflow.
type ApplicationHook struct {
	Name string
	Run  func(ctx context.Context, app *models.Application) error
}

func runHooks(ctx context.Context, hooks []ApplicationHook, app *models.Application) {
	ctx = context.WithoutCancel(ctx)
	for _, hook := range hooks {
		if err := runHook(ctx, hook, app); err != nil {
			config.Logger.Warn("Application hook failed",
				zap.String("hook", hook.Name),
				zap.String("application_id", app.ID.String()),
				zap.Error(err))
		}
	}
}

func runHook(ctx context.Context, hook ApplicationHook, app *models.Application) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hook.Run(ctx, app)
}

type ApplicationIndexer interface {
	IndexApplication(app models.Application) error
}

// IndexHook keeps the admin search index in step with stored rows.
func IndexHook(indexer ApplicationIndexer) ApplicationHook {
	return ApplicationHook{
		Name: "search_index",
		Run: func(ctx context.Context, app *models.Application) error {
			return indexer.IndexApplication(*app)
		},
	}
}

type Broadcaster interface {
	Broadcast(message websocket.WebSocketMessage)
}

// BroadcastHook tells connected reviewers and the owner's own connections
// about the change.
func BroadcastHook(hub Broadcaster, messageType websocket.MessageType) ApplicationHook {
	return ApplicationHook{
		Name: "broadcast_" + strings.ToLower(string(messageType)),
		Run: func(ctx context.Context, app *models.Application) error {
			payload := fiber.Map{
				"id":               app.ID,
				"reference_id":     app.ReferenceID(),
				"status":           app.Status,
				"application_type": app.ApplicationType,
				"full_name":        app.FullName,
				"school_name":      app.SchoolName,
			}
			hub.Broadcast(websocket.WebSocketMessage{Type: messageType, Topic: websocket.AdminTopic, Payload: payload})
			hub.Broadcast(websocket.WebSocketMessage{Type: messageType, Topic: websocket.UserTopic(app.UserID), Payload: payload})
			return nil
		},
	}
}

// CacheInvalidationHook drops cached admin listings.
func CacheInvalidationHook(cache ListCache) ApplicationHook {
	return ApplicationHook{
		Name: "invalidate_cache",
		Run: func(ctx context.Context, app *models.Application) error {
			return cache.InvalidateCache(ctx, CacheResource)
		},
	}
}
