package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/novolabs/spotlight/pkg/internal/http/exts"
	"github.com/novolabs/spotlight/pkg/internal/models"
	"github.com/novolabs/spotlight/pkg/internal/services"
)

func feedKind(c *fiber.Ctx) (models.FeedKind, error) {
	kind, ok := models.ParseFeedKind(c.Params("kind"))
	if !ok {
		return kind, fiber.NewError(fiber.StatusNotFound, "unknown feed kind")
	}
	return kind, nil
}

func ingestFeedMessage(c *fiber.Ctx) error {
	kind, err := feedKind(c)
	if err != nil {
		return err
	}

	var data services.InboundMessage
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	post, err := engine.IngestMessage(c.UserContext(), c.Params("community"), kind, data)
	if err != nil {
		if errors.Is(err, services.ErrFeedNotConfigured) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func togglePostLike(c *fiber.Ctx) error {
	kind, err := feedKind(c)
	if err != nil {
		return err
	}
	postId, _ := c.ParamsInt("postId", 0)

	var data struct {
		UserID string `json:"user_id" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	liked, engagement, err := engine.ToggleLike(c.UserContext(), kind, int64(postId), data.UserID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"liked":    liked,
		"likes":    engagement.Likes,
		"comments": engagement.Comments,
	})
}

func commentPost(c *fiber.Ctx) error {
	kind, err := feedKind(c)
	if err != nil {
		return err
	}
	postId, _ := c.ParamsInt("postId", 0)

	var data struct {
		UserID      string `json:"user_id" validate:"required"`
		DisplayName string `json:"display_name" validate:"required"`
		Content     string `json:"content" validate:"required,max=300"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	comment, err := engine.AddComment(c.UserContext(), kind, int64(postId), data.UserID, data.DisplayName, data.Content)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func getPostInfo(c *fiber.Ctx) error {
	kind, err := feedKind(c)
	if err != nil {
		return err
	}
	postId, _ := c.ParamsInt("postId", 0)

	info, err := engine.GetPostInfo(kind, int64(postId))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(info)
}

func deletePost(c *fiber.Ctx) error {
	kind, err := feedKind(c)
	if err != nil {
		return err
	}
	postId, _ := c.ParamsInt("postId", 0)

	userId := c.Query("userId")
	if len(userId) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing user id in request")
	}

	if err := engine.DeletePost(c.UserContext(), kind, int64(postId), userId); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, services.ErrNotPostAuthor) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
