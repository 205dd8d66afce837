package service

import (
	"context"

	"blogfeed/internal/cache"
	"blogfeed/internal/featureflags"
	"blogfeed/internal/models"
	"blogfeed/internal/observability"
	"blogfeed/internal/pagination"
	"blogfeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PostPage is one page of a post feed.
type PostPage = pagination.Page[*models.Post]

// HomePageCache caches pages of the home timeline.
type HomePageCache = cache.PageCache[PostPage]

// FeedConfig tunes the feed resolver.
type FeedConfig struct {
	PageSize           int
	GroupCap           int
	MostCommentedLimit int
	// HomeCache is optional; nil serves the home timeline from the store.
	HomeCache *HomePageCache
	Flags     *featureflags.Manager
}

// FeedService resolves the post sets shown in every viewing context.
type FeedService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	groups   repository.GroupRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	cfg      FeedConfig
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	cfg FeedConfig,
) *FeedService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.DefaultPageSize
	}
	return &FeedService{
		posts:    posts,
		users:    users,
		groups:   groups,
		comments: comments,
		follows:  follows,
		cfg:      cfg,
	}
}

// GroupFeed is a group page.
type GroupFeed struct {
	Group *models.Group
	Page  PostPage
}

// ProfileFeed is an author page.
type ProfileFeed struct {
	Author    *models.User
	Page      PostPage
	PostCount int64
	Following bool
	IsOwner   bool
}

// SearchFeed is a search results page.
type SearchFeed struct {
	Query string
	Page  PostPage
}

// PostDetail is a single post with its comments, newest first.
type PostDetail struct {
	Post      *models.Post
	Author    *models.User
	PostCount int64
	Following bool
	Comments  []*models.Comment
}

// Sidebar holds the data added to every rendered page.
type Sidebar struct {
	Groups        []*models.Group
	MostCommented []*models.Post
}

// resolve counts scope, clamps the window (capping the count when limit > 0)
// and fetches only the rows of that window.
func (s *FeedService) resolve(ctx context.Context, feed string, scope repository.FeedScope, number, limit int) (PostPage, error) {
	count, err := s.posts.Count(ctx, scope)
	if err != nil {
		return PostPage{}, err
	}
	if limit > 0 && count > int64(limit) {
		count = int64(limit)
	}
	w := pagination.Resolve(count, s.cfg.PageSize, number)
	items, err := s.posts.List(ctx, scope, w.Limit, w.Offset)
	if err != nil {
		return PostPage{}, err
	}
	observability.FeedResolutions.WithLabelValues(feed).Inc()
	return pagination.NewPage(items, w), nil
}

func (s *FeedService) homeCacheEnabled() bool {
	return s.cfg.HomeCache != nil && s.cfg.Flags.On(featureflags.HomeCache)
}

// Home returns a page of every post, newest first. Pages come from the home cache
// when it is enabled, so their content is the same for every viewer until the TTL
// expires or InvalidateHome runs; ownership is applied afterwards.
func (s *FeedService) Home(ctx context.Context, viewerID uint, rawPage string) (PostPage, error) {
	number := pagination.ParseNumber(rawPage)
	span, ctx := observability.StartFeedSpan(ctx, "home", number)
	defer span.End()

	fetch := func(ctx context.Context) (PostPage, error) {
		return s.resolve(ctx, "home", repository.FeedScope{}, number, 0)
	}

	var (
		page   PostPage
		result = cache.Bypass
		err    error
	)
	if s.homeCacheEnabled() {
		page, result, err = s.cfg.HomeCache.Fetch(ctx, number, fetch)
	} else {
		page, err = fetch(ctx)
	}
	observability.HomeCacheLookups.WithLabelValues(string(result)).Inc()
	span.AddAttributes(attribute.String("cache.result", string(result)))
	if err != nil {
		span.SetError(err)
		return PostPage{}, err
	}

	page.Items = markPostOwnership(page.Items, viewerID)
	return page, nil
}

// InvalidateHome drops every cached home page.
func (s *FeedService) InvalidateHome(ctx context.Context) {
	if s.cfg.HomeCache != nil {
		s.cfg.HomeCache.Invalidate(ctx)
	}
}

// Group returns the posts of the group with slug, limited to the GroupCap most recent.
func (s *FeedService) Group(ctx context.Context, viewerID uint, slug, rawPage string) (*GroupFeed, error) {
	number := pagination.ParseNumber(rawPage)
	span, ctx := observability.StartFeedSpan(ctx, "group", number)
	defer span.End()

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	page, err := s.resolve(ctx, "group", repository.FeedScope{GroupID: group.ID}, number, s.cfg.GroupCap)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	page.Items = markPostOwnership(page.Items, viewerID)
	return &GroupFeed{Group: group, Page: page}, nil
}

// Profile returns the posts of username with the author's post count and follow state.
func (s *FeedService) Profile(ctx context.Context, viewerID uint, username, rawPage string) (*ProfileFeed, error) {
	number := pagination.ParseNumber(rawPage)
	span, ctx := observability.StartFeedSpan(ctx, "profile", number)
	defer span.End()

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	page, err := s.resolve(ctx, "profile", repository.FeedScope{AuthorID: author.ID}, number, 0)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	following, err := isFollowing(ctx, s.follows, viewerID, author.ID)
	if err != nil {
		return nil, err
	}

	page.Items = markPostOwnership(page.Items, viewerID)
	return &ProfileFeed{
		Author:    author,
		Page:      page,
		PostCount: page.Count,
		Following: following,
		IsOwner:   viewerID != 0 && viewerID == author.ID,
	}, nil
}

// Follow returns posts by the authors viewerID follows.
func (s *FeedService) Follow(ctx context.Context, viewerID uint, rawPage string) (PostPage, error) {
	if viewerID == 0 {
		return PostPage{}, models.NewUnauthorizedError("Authentication required")
	}
	number := pagination.ParseNumber(rawPage)
	span, ctx := observability.StartFeedSpan(ctx, "follow", number)
	defer span.End()

	page, err := s.resolve(ctx, "follow", repository.FeedScope{FollowerID: viewerID}, number, 0)
	if err != nil {
		span.SetError(err)
		return PostPage{}, err
	}
	page.Items = markPostOwnership(page.Items, viewerID)
	return page, nil
}

// Search returns posts whose text contains query, ignoring case. An empty query matches every post.
func (s *FeedService) Search(ctx context.Context, viewerID uint, query, rawPage string) (*SearchFeed, error) {
	number := pagination.ParseNumber(rawPage)
	span, ctx := observability.StartFeedSpan(ctx, "search", number)
	defer span.End()

	scope := repository.FeedScope{Query: query, Searching: true}
	page, err := s.resolve(ctx, "search", scope, number, 0)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	page.Items = markPostOwnership(page.Items, viewerID)
	return &SearchFeed{Query: query, Page: page}, nil
}

// Post returns the post id written by username.
func (s *FeedService) Post(ctx context.Context, viewerID uint, username string, id uint) (*PostDetail, error) {
	post, err := s.posts.GetByAuthor(ctx, username, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.posts.Count(ctx, repository.FeedScope{AuthorID: post.AuthorID})
	if err != nil {
		return nil, err
	}
	following, err := isFollowing(ctx, s.follows, viewerID, post.AuthorID)
	if err != nil {
		return nil, err
	}

	post.IsOwner = viewerID != 0 && viewerID == post.AuthorID
	markCommentOwnership(comments, viewerID)
	author := post.Author
	return &PostDetail{
		Post:      post,
		Author:    &author,
		PostCount: count,
		Following: following,
		Comments:  comments,
	}, nil
}

// Sidebar returns all groups by title and, when enabled, the most commented posts.
func (s *FeedService) Sidebar(ctx context.Context) (*Sidebar, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &Sidebar{Groups: groups, MostCommented: []*models.Post{}}
	if s.cfg.Flags.On(featureflags.MostCommented) {
		top, err := s.posts.MostCommented(ctx, s.cfg.MostCommentedLimit)
		if err != nil {
			return nil, err
		}
		out.MostCommented = top
	}
	return out, nil
}
