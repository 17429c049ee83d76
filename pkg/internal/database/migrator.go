package database

import (
	"github.com/novolabs/spotlight/pkg/internal/models"
	"gorm.io/gorm"
)

// Feed tables are namespaced per feed kind over a single shared model
// set. AutoMigrate keeps column addition idempotent, which is how late
// columns (caption, last_post_id) arrive on already-deployed tables.
func RunMigration(source *gorm.DB) error {
	for _, kind := range models.FeedKinds {
		if err := source.Table(kind.Table("posts")).AutoMigrate(&models.Post{}); err != nil {
			return err
		}
		if err := source.Table(kind.Table("likes")).AutoMigrate(&models.Like{}); err != nil {
			return err
		}
		if err := source.Table(kind.Table("comments")).AutoMigrate(&models.Comment{}); err != nil {
			return err
		}
		if err := source.Table(kind.Table("highlight_state")).AutoMigrate(&models.HighlightState{}); err != nil {
			return err
		}
	}

	if err := source.AutoMigrate(&models.RelayIdentity{}); err != nil {
		return err
	}

	return nil
}
