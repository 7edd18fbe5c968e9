package models

import "time"

// Post is a piece of content owned by exactly one user. The creator is
// immutable after creation; only the owner may edit or delete.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatorID uint      `gorm:"index;not null" json:"creator_id"`
	Caption   string    `gorm:"type:text;not null" json:"caption"`
	ViewCount int64     `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LikeCount     int `gorm:"default:0" json:"like_count"`
	BookmarkCount int `gorm:"default:0" json:"bookmark_count"`
	CommentCount  int `gorm:"default:0" json:"comment_count"`

	Creator  User      `gorm:"foreignKey:CreatorID" json:"creator"`
	Comments []Comment `json:"comments"`
}

// PostLike records set membership of a user in a post's likes. The composite
// primary key enforces set semantics at the storage level.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostBookmark records set membership of a user in a post's bookmarks.
type PostBookmark struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
