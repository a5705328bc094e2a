package likeservice

import "database/sql"

// target is the kind of thing a like points at.
type target struct {
	column     string
	uniqueKey  string
	foreignKey string
	param      string
}

var (
	blogTarget = target{
		column:     "blog_id",
		uniqueKey:  "likes_user_blog_key",
		foreignKey: "likes_blog_id_fkey",
		param:      "blogId",
	}
	commentTarget = target{
		column:     "comment_id",
		uniqueKey:  "likes_user_comment_key",
		foreignKey: "likes_comment_id_fkey",
		param:      "commentId",
	}
)

type LikeModel struct {
	db *sql.DB
}

type LikeService struct {
	m *LikeModel
}
