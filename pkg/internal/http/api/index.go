package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/novolabs/spotlight/pkg/internal/services"
)

var engine *services.Engine

func MapAPIs(app *fiber.App, srv *services.Engine) {
	engine = srv

	webhooks := app.Group("/webhooks")
	{
		webhooks.Post("/:community/feeds/:kind/messages", ingestFeedMessage)
	}

	api := app.Group("/api")
	{
		feeds := api.Group("/feeds/:kind")
		{
			feeds.Get("/posts/:postId", getPostInfo)
			feeds.Post("/posts/:postId/like", togglePostLike)
			feeds.Post("/posts/:postId/comments", commentPost)
			feeds.Delete("/posts/:postId", deletePost)
		}
	}
}
