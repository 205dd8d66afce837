// Package testutil provides in-memory stores and fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"blogfeed/internal/database"
	"blogfeed/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB returns a migrated, isolated in-memory sqlite database with foreign keys enforced.
// A single connection keeps the shared-cache database alive and serializes transactions.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:blogfeed_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateGroup inserts a group; the slug is derived from the title.
func CreateGroup(t *testing.T, db *gorm.DB, title string) *models.Group {
	t.Helper()
	g := &models.Group{Title: title}
	require.NoError(t, db.Create(g).Error)
	return g
}

var postSeq atomic.Int64

// CreatePost inserts a post by author, optionally in group. Each call gets a strictly later
// pub_date than the previous one so orderings are deterministic.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	p := &models.Post{
		Text:     text,
		AuthorID: author.ID,
		PubDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(postSeq.Add(1)) * time.Minute),
	}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(p).Error)
	return p
}

// CreateComment inserts a comment by author on post.
func CreateComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	require.NoError(t, db.Omit("Author", "Post").Create(c).Error)
	return c
}

// CreateFollow inserts a follower -> author edge.
func CreateFollow(t *testing.T, db *gorm.DB, follower, author *models.User) *models.Follow {
	t.Helper()
	f := &models.Follow{UserID: follower.ID, AuthorID: author.ID}
	require.NoError(t, db.Omit("User", "Author").Create(f).Error)
	return f
}
