package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
)

// RegisterRoutes exposes the public event feed and the caller's draft notices.
func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler) {
	r.Get("/ws/events", websocket.New(serve(hub, func(*websocket.Conn) string {
		return TopicEvents
	})))

	r.Get("/ws/drafts", authMiddleware, websocket.New(serve(hub, func(c *websocket.Conn) string {
		userID, _ := c.Locals(auth.LocalsUserID).(string)
		return DraftTopic(userID)
	})))
}

func serve(hub *Hub, topicOf func(*websocket.Conn) string) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := hub.Register(topicOf(c))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}
}
