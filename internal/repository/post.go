package repository

import (
	"context"
	"errors"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicatePost is returned when another post already has the same description and text.
var ErrDuplicatePost = errors.New("a post with this description and text already exists")

// postColumns annotates every post with its comment count in the same statement.
const postColumns = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

const postOrder = "posts.pub_date DESC, posts.id DESC"

// FeedScope narrows the post set of a feed. Zero fields do not filter.
type FeedScope struct {
	GroupID    uint
	AuthorID   uint
	FollowerID uint
	Query      string
	// Searching enables the text filter even for an empty Query.
	Searching bool
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Count(ctx context.Context, scope FeedScope) (int64, error)
	List(ctx context.Context, scope FeedScope, limit, offset int) ([]*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetByAuthor resolves a post only when it belongs to username.
	GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error)
	MostCommented(ctx context.Context, n int) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) scoped(ctx context.Context, scope FeedScope) *gorm.DB {
	db := readDB(r.db)
	q := db.WithContext(ctx).Model(&models.Post{})
	if scope.GroupID != 0 {
		q = q.Where("posts.group_id = ?", scope.GroupID)
	}
	if scope.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", scope.AuthorID)
	}
	if scope.FollowerID != 0 {
		followed := db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", scope.FollowerID)
		q = q.Where("posts.author_id IN (?)", followed)
	}
	if scope.Searching {
		q = q.Where(`LOWER(posts.text) LIKE ? ESCAPE '\'`, containsPattern(scope.Query))
	}
	return q
}

func (r *postRepository) Count(ctx context.Context, scope FeedScope) (int64, error) {
	var n int64
	if err := r.scoped(ctx, scope).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) List(ctx context.Context, scope FeedScope, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	if limit <= 0 {
		return posts, nil
	}
	err := r.scoped(ctx, scope).
		Select(postColumns).
		Preload("Author").
		Preload("Group").
		Order(postOrder).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Select(postColumns).
		Preload("Author").
		Preload("Group").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Select(postColumns).
		Joins("JOIN users ON users.id = posts.author_id").
		Preload("Author").
		Preload("Group").
		Where("posts.id = ? AND users.username = ?", id, username).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) MostCommented(ctx context.Context, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	if n <= 0 {
		return posts, nil
	}
	err := readDB(r.db).WithContext(ctx).
		Select(postColumns).
		Preload("Author").
		Order("comments_count DESC, " + postOrder).
		Limit(n).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func duplicateExists(tx *gorm.DB, post *models.Post) (bool, error) {
	var n int64
	q := tx.Model(&models.Post{}).Where("description = ? AND text = ?", post.Description, post.Text)
	if post.ID != 0 {
		q = q.Where("id <> ?", post.ID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts post after checking for an identical (description, text) pair in the same
// transaction. No unique index backs the check, so two concurrent creates can both pass.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := duplicateExists(tx, post)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicatePost
		}
		return tx.Omit(clause.Associations).Create(post).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePost) {
			return err
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", post.ID)
	return nil
}

// Update writes description, text, group and image. pub_date and author are never written.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.Select("id").First(&existing, post.ID).Error; err != nil {
			return err
		}
		dup, err := duplicateExists(tx, post)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicatePost
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"description": post.Description,
			"text":        post.Text,
			"group_id":    post.GroupID,
			"image":       post.Image,
		}).Error
	})
	switch {
	case err == nil:
		r.log.LogWrite(ctx, "update", post.ID)
		return nil
	case errors.Is(err, ErrDuplicatePost):
		return err
	default:
		return notFoundOr(err, "Post", post.ID)
	}
}

// Delete removes the post and its comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return notFoundOr(err, "Post", id)
	}
	r.log.LogWrite(ctx, "delete", id)
	return nil
}
