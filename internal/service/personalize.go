package service

import (
	"context"

	"blogfeed/internal/models"
	"blogfeed/internal/repository"
)

// markPostOwnership returns copies of posts with IsOwner set for viewerID.
// The input may be shared with other requests through the page cache and is left untouched.
func markPostOwnership(posts []*models.Post, viewerID uint) []*models.Post {
	out := make([]*models.Post, len(posts))
	for i, p := range posts {
		cp := *p
		cp.IsOwner = viewerID != 0 && cp.AuthorID == viewerID
		out[i] = &cp
	}
	return out
}

func markCommentOwnership(comments []*models.Comment, viewerID uint) {
	for _, c := range comments {
		c.IsOwner = viewerID != 0 && c.AuthorID == viewerID
	}
}

// isFollowing is false for anonymous viewers and for a viewer looking at themself.
func isFollowing(ctx context.Context, follows repository.FollowRepository, viewerID, authorID uint) (bool, error) {
	if viewerID == 0 || viewerID == authorID {
		return false, nil
	}
	return follows.Exists(ctx, viewerID, authorID)
}
