package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novolabs/spotlight/pkg/internal/database"
	"github.com/novolabs/spotlight/pkg/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

func CreatePost(kind models.FeedKind, post models.Post) (models.Post, error) {
	if err := database.C.Table(kind.Table("posts")).Create(&post).Error; err != nil {
		return post, err
	}
	return post, nil
}

func GetPost(kind models.FeedKind, id int64) (models.Post, error) {
	var item models.Post
	if err := database.C.Table(kind.Table("posts")).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, ErrPostNotFound
		}
		return item, err
	}
	return item, nil
}

// DeletePost removes the post and its likes and comments. Deleting an id
// that no longer exists is a no-op.
func DeletePost(kind models.FeedKind, id int64) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(kind.Table("likes")).
			Where("post_id = ?", id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Table(kind.Table("comments")).
			Where("post_id = ?", id).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Table(kind.Table("posts")).
			Where("id = ?", id).
			Delete(&models.Post{}).Error
	})
}

// ToggleLike flips the like of one user on one post and reports the
// resulting state.
func ToggleLike(kind models.FeedKind, postID int64, userID string) (bool, error) {
	liked := false
	err := database.C.Transaction(func(tx *gorm.DB) error {
		res := tx.Table(kind.Table("likes")).
			Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		liked = true
		return tx.Table(kind.Table("likes")).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{PostID: postID, UserID: userID}).Error
	})
	return liked, err
}

func AddComment(kind models.FeedKind, comment models.Comment) (models.Comment, error) {
	if err := database.C.Table(kind.Table("comments")).Create(&comment).Error; err != nil {
		return comment, err
	}
	return comment, nil
}

func CountEngagement(kind models.FeedKind, postID int64) (models.PostEngagement, error) {
	var out models.PostEngagement
	if err := database.C.Table(kind.Table("likes")).
		Where("post_id = ?", postID).
		Count(&out.Likes).Error; err != nil {
		return out, err
	}
	if err := database.C.Table(kind.Table("comments")).
		Where("post_id = ?", postID).
		Count(&out.Comments).Error; err != nil {
		return out, err
	}
	return out, nil
}

func ListPostLikes(kind models.FeedKind, postID int64, take int) ([]models.Like, error) {
	var items []models.Like
	if err := database.C.Table(kind.Table("likes")).
		Where("post_id = ?", postID).
		Limit(take).
		Find(&items).Error; err != nil {
		return items, err
	}
	return items, nil
}

func ListRecentComments(kind models.FeedKind, postID int64, take int) ([]models.Comment, error) {
	var items []models.Comment
	if err := database.C.Table(kind.Table("comments")).
		Where("post_id = ?", postID).
		Order("id DESC").
		Limit(take).
		Find(&items).Error; err != nil {
		return items, err
	}
	return items, nil
}

// GetTopPost ranks the community's posts created since windowStart by
// like count, breaking ties towards the most recent post. Returns nil
// when nothing qualifies.
func GetTopPost(kind models.FeedKind, communityID string, windowStart int64) (*models.RankedPost, error) {
	var row models.RankedPost
	res := database.C.Raw(fmt.Sprintf(`
		SELECT p.*, COUNT(l.user_id) AS like_count
		FROM %s p
		LEFT JOIN %s l ON l.post_id = p.id
		WHERE p.community_id = ? AND p.created_at >= ?
		GROUP BY p.id
		ORDER BY like_count DESC, p.created_at DESC
		LIMIT 1
	`, kind.Table("posts"), kind.Table("likes")), communityID, windowStart).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func UpdatePostCard(kind models.FeedKind, id int64, messageID string, mediaURL string) error {
	return database.C.Table(kind.Table("posts")).
		Where("id = ?", id).
		Updates(map[string]any{
			"public_message_id": messageID,
			"media_url":         mediaURL,
		}).Error
}

func UpdatePostMediaURL(kind models.FeedKind, id int64, mediaURL string) error {
	return database.C.Table(kind.Table("posts")).
		Where("id = ?", id).
		Update("media_url", mediaURL).Error
}

func GetHighlightState(kind models.FeedKind, communityID string) (models.HighlightState, error) {
	var state models.HighlightState
	if err := database.C.Table(kind.Table("highlight_state")).
		Where("community_id = ?", communityID).
		First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.HighlightState{CommunityID: communityID}, nil
		}
		return state, err
	}
	return state, nil
}

// SetHighlightState upserts the community's highlight row as a partial
// merge: only the passed columns change, everything else survives. The
// reconciler depends on last_post_id living through cleared states.
func SetHighlightState(kind models.FeedKind, communityID string, fields map[string]any) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(kind.Table("highlight_state")).
			Where("community_id = ?", communityID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			row := map[string]any{"community_id": communityID}
			for k, v := range fields {
				row[k] = v
			}
			return tx.Table(kind.Table("highlight_state")).Create(row).Error
		}

		return tx.Table(kind.Table("highlight_state")).
			Where("community_id = ?", communityID).
			Updates(fields).Error
	})
}

// DeleteExpiredPosts drops posts created before cutoff, then sweeps likes
// and comments whose post is gone. The referential pass covers cascades
// the schema does not enforce.
func DeleteExpiredPosts(kind models.FeedKind, cutoff int64) error {
	posts := kind.Table("posts")
	if err := database.C.Table(posts).
		Where("created_at < ?", cutoff).
		Delete(&models.Post{}).Error; err != nil {
		return err
	}
	if err := database.C.Exec(fmt.Sprintf(
		`DELETE FROM %s WHERE post_id NOT IN (SELECT id FROM %s)`,
		kind.Table("likes"), posts,
	)).Error; err != nil {
		return err
	}
	return database.C.Exec(fmt.Sprintf(
		`DELETE FROM %s WHERE post_id NOT IN (SELECT id FROM %s)`,
		kind.Table("comments"), posts,
	)).Error
}
