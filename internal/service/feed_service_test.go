package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blogfeed/internal/cache"
	"blogfeed/internal/featureflags"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/testutil"
	"blogfeed/internal/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePosts returns a post repository stub over n posts numbered n..1 (newest first).
func fakePosts(n int) *postRepoStub {
	all := make([]*models.Post, n)
	for i := range all {
		all[i] = &models.Post{ID: uint(n - i), AuthorID: uint(n-i)%2 + 1, Text: fmt.Sprintf("post %d", n-i)}
	}
	repo := noopPostRepo()
	repo.countFn = func(_ context.Context, _ repository.FeedScope) (int64, error) { return int64(n), nil }
	repo.listFn = func(_ context.Context, _ repository.FeedScope, limit, offset int) ([]*models.Post, error) {
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], nil
	}
	return repo
}

func newStubFeed(posts *postRepoStub, cfg FeedConfig) *FeedService {
	return NewFeedService(posts, noopUserRepo(), noopGroupRepo(), noopCommentRepo(), noopFollowRepo(), cfg)
}

func TestFeedService_Home_Pagination(t *testing.T) {
	t.Parallel()

	svc := newStubFeed(fakePosts(23), FeedConfig{PageSize: 10, Flags: featureflags.NewManager("")})
	ctx := context.Background()

	tests := []struct {
		raw     string
		number  int
		items   int
		hasNext bool
		hasPrev bool
	}{
		{"", 1, 10, true, false},
		{"abc", 1, 10, true, false},
		{"0", 1, 10, true, false},
		{"-3", 1, 10, true, false},
		{"2", 2, 10, true, true},
		{"3", 3, 3, false, true},
		{"99", 3, 3, false, true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run("page "+tc.raw, func(t *testing.T) {
			t.Parallel()
			page, err := svc.Home(ctx, 0, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.number, page.Number)
			assert.Len(t, page.Items, tc.items)
			assert.Equal(t, tc.hasNext, page.HasNext)
			assert.Equal(t, tc.hasPrev, page.HasPrevious)
			assert.Equal(t, int64(23), page.Count)
			assert.Equal(t, 3, page.NumPages)
		})
	}
}

func TestFeedService_Home_Empty(t *testing.T) {
	t.Parallel()

	svc := newStubFeed(fakePosts(0), FeedConfig{})
	page, err := svc.Home(context.Background(), 0, "5")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestFeedService_Home_OwnershipDoesNotLeak(t *testing.T) {
	t.Parallel()

	posts := fakePosts(4)
	svc := newStubFeed(posts, FeedConfig{})
	ctx := context.Background()

	mine, err := svc.Home(ctx, 1, "1")
	require.NoError(t, err)
	for _, p := range mine.Items {
		assert.Equal(t, p.AuthorID == 1, p.IsOwner, "post %d", p.ID)
	}

	anon, err := svc.Home(ctx, 0, "1")
	require.NoError(t, err)
	for _, p := range anon.Items {
		assert.False(t, p.IsOwner)
	}
}

func TestFeedService_Group_Cap(t *testing.T) {
	t.Parallel()

	var scopes []repository.FeedScope
	posts := fakePosts(30)
	count := posts.countFn
	posts.countFn = func(ctx context.Context, scope repository.FeedScope) (int64, error) {
		scopes = append(scopes, scope)
		return count(ctx, scope)
	}
	svc := newStubFeed(posts, FeedConfig{PageSize: 10, GroupCap: 12})

	first, err := svc.Group(context.Background(), 0, "cats", "")
	require.NoError(t, err)
	assert.Equal(t, int64(12), first.Page.Count)
	assert.Equal(t, 2, first.Page.NumPages)
	assert.Len(t, first.Page.Items, 10)
	assert.Equal(t, "cats", first.Group.Slug)

	second, err := svc.Group(context.Background(), 0, "cats", "7")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Page.Number)
	require.Len(t, second.Page.Items, 2)
	assert.Equal(t, uint(19), second.Page.Items[1].ID, "the twelfth most recent post closes the group window")

	require.NotEmpty(t, scopes)
	assert.Equal(t, uint(1), scopes[0].GroupID)
}

func TestFeedService_Group_UnknownSlug(t *testing.T) {
	t.Parallel()

	groups := noopGroupRepo()
	groups.getBySlugFn = func(_ context.Context, slug string) (*models.Group, error) {
		return nil, models.NewNotFoundError("Group", slug)
	}
	svc := NewFeedService(fakePosts(3), noopUserRepo(), groups, noopCommentRepo(), noopFollowRepo(), FeedConfig{})
	_, err := svc.Group(context.Background(), 0, "nope", "")
	assertNotFound(t, err)
}

func TestFeedService_Follow_RequiresViewer(t *testing.T) {
	t.Parallel()

	svc := newStubFeed(fakePosts(3), FeedConfig{})
	_, err := svc.Follow(context.Background(), 0, "")
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func TestFeedService_Sidebar_Flag(t *testing.T) {
	t.Parallel()

	posts := fakePosts(3)
	var asked int
	posts.mostCommentedFn = func(_ context.Context, n int) ([]*models.Post, error) {
		asked = n
		return []*models.Post{{ID: 2}}, nil
	}

	on := newStubFeed(posts, FeedConfig{MostCommentedLimit: 5, Flags: featureflags.NewManager("")})
	side, err := on.Sidebar(context.Background())
	require.NoError(t, err)
	assert.Len(t, side.MostCommented, 1)
	assert.Equal(t, 5, asked)

	off := newStubFeed(posts, FeedConfig{MostCommentedLimit: 5, Flags: featureflags.NewManager("most_commented=off")})
	side, err = off.Sidebar(context.Background())
	require.NoError(t, err)
	assert.Empty(t, side.MostCommented)
}

// storeFixture wires a FeedService over a real sqlite store.
type storeFixture struct {
	db   *gorm.DB
	feed *FeedService
}

func newStoreFixture(t *testing.T, cfg FeedConfig) *storeFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	feed := NewFeedService(
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		repository.NewGroupRepository(db),
		repository.NewCommentRepository(db),
		repository.NewFollowRepository(db),
		cfg,
	)
	return &storeFixture{db: db, feed: feed}
}

func TestFeedService_Contexts_Store(t *testing.T) {
	f := newStoreFixture(t, FeedConfig{PageSize: 10, GroupCap: 12, MostCommentedLimit: 5, Flags: featureflags.NewManager("")})
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	carol := testutil.CreateUser(t, f.db, "carol")
	cats := testutil.CreateGroup(t, f.db, "Cats")

	a1 := testutil.CreatePost(t, f.db, alice, cats, "Alice on Cats")
	testutil.CreatePost(t, f.db, bob, nil, "bob says hello")
	b2 := testutil.CreatePost(t, f.db, bob, cats, "More CATS from bob")
	testutil.CreateComment(t, f.db, a1, bob, "first")
	testutil.CreateComment(t, f.db, a1, carol, "second")
	testutil.CreateFollow(t, f.db, carol, bob)

	t.Run("home newest first with counts", func(t *testing.T) {
		page, err := f.feed.Home(ctx, alice.ID, "")
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, b2.ID, page.Items[0].ID)
		assert.Equal(t, a1.ID, page.Items[2].ID)
		assert.Equal(t, 2, page.Items[2].CommentsCount)
		assert.True(t, page.Items[2].IsOwner)
		assert.Equal(t, "bob", page.Items[0].Author.Username)
		require.NotNil(t, page.Items[0].Group)
		assert.Equal(t, "cats", page.Items[0].Group.Slug)
	})

	t.Run("group by slug", func(t *testing.T) {
		gf, err := f.feed.Group(ctx, 0, "cats", "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), gf.Page.Count)
	})

	t.Run("profile", func(t *testing.T) {
		pf, err := f.feed.Profile(ctx, carol.ID, "bob", "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), pf.PostCount)
		assert.True(t, pf.Following)
		assert.False(t, pf.IsOwner)

		self, err := f.feed.Profile(ctx, bob.ID, "bob", "")
		require.NoError(t, err)
		assert.False(t, self.Following)
		assert.True(t, self.IsOwner)

		_, err = f.feed.Profile(ctx, 0, "nobody", "")
		assertNotFound(t, err)
	})

	t.Run("follow feed", func(t *testing.T) {
		page, err := f.feed.Follow(ctx, carol.ID, "")
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		for _, p := range page.Items {
			assert.Equal(t, bob.ID, p.AuthorID)
		}

		empty, err := f.feed.Follow(ctx, alice.ID, "")
		require.NoError(t, err)
		assert.Empty(t, empty.Items)
	})

	t.Run("search ignores case", func(t *testing.T) {
		sf, err := f.feed.Search(ctx, 0, "cats", "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), sf.Page.Count)

		sf, err = f.feed.Search(ctx, 0, "100%", "")
		require.NoError(t, err)
		assert.Zero(t, sf.Page.Count)

		sf, err = f.feed.Search(ctx, 0, "", "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), sf.Page.Count)
	})

	t.Run("post detail", func(t *testing.T) {
		detail, err := f.feed.Post(ctx, bob.ID, "alice", a1.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", detail.Author.Username)
		assert.Equal(t, int64(1), detail.PostCount)
		assert.False(t, detail.Post.IsOwner)
		require.Len(t, detail.Comments, 2)
		assert.Equal(t, "second", detail.Comments[0].Text)
		assert.False(t, detail.Comments[0].IsOwner)
		assert.True(t, detail.Comments[1].IsOwner)

		_, err = f.feed.Post(ctx, 0, "bob", a1.ID)
		assertNotFound(t, err)
	})

	t.Run("sidebar", func(t *testing.T) {
		side, err := f.feed.Sidebar(ctx)
		require.NoError(t, err)
		require.Len(t, side.Groups, 1)
		require.NotEmpty(t, side.MostCommented)
		assert.Equal(t, a1.ID, side.MostCommented[0].ID)
	})
}

func withMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := cache.GetClient()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = cache.GetClient().Close()
		cache.SetClient(prev)
	})
	return mr
}

func TestFeedService_HomeCache_FreezeAndInvalidate(t *testing.T) {
	withMiniRedis(t)

	home := cache.NewPageCache[PostPage]("test:home", time.Minute)
	f := newStoreFixture(t, FeedConfig{HomeCache: home, Flags: featureflags.NewManager("")})
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	first := testutil.CreatePost(t, f.db, alice, nil, "first")

	page, err := f.feed.Home(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// A write that goes around the services is not seen until invalidation.
	testutil.CreatePost(t, f.db, alice, nil, "second")
	page, err = f.feed.Home(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.True(t, page.Items[0].IsOwner, "ownership is applied after the cache")
	assert.Equal(t, "alice", page.Items[0].Author.Username)

	f.feed.InvalidateHome(ctx)
	page, err = f.feed.Home(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.Items[0].IsOwner)
}

func TestFeedService_HomeCache_WritesInvalidate(t *testing.T) {
	withMiniRedis(t)

	home := cache.NewPageCache[PostPage]("test:home:writes", time.Minute)
	f := newStoreFixture(t, FeedConfig{HomeCache: home, Flags: featureflags.NewManager("")})
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")

	posts := NewPostService(repository.NewPostRepository(f.db), repository.NewGroupRepository(f.db), f.feed.InvalidateHome)
	comments := NewCommentService(repository.NewCommentRepository(f.db), repository.NewPostRepository(f.db), f.feed.InvalidateHome)

	page, err := f.feed.Home(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	post, err := posts.CreatePost(ctx, alice.ID, validation.PostForm{Text: "hello"})
	require.NoError(t, err)
	page, err = f.feed.Home(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Zero(t, page.Items[0].CommentsCount)

	_, err = comments.AddComment(ctx, alice.ID, "alice", post.ID, validation.CommentForm{Text: "hi"})
	require.NoError(t, err)
	page, err = f.feed.Home(ctx, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Items[0].CommentsCount)
}

func TestFeedService_HomeCache_FlagOff(t *testing.T) {
	mr := withMiniRedis(t)

	home := cache.NewPageCache[PostPage]("test:home:off", time.Minute)
	f := newStoreFixture(t, FeedConfig{HomeCache: home, Flags: featureflags.NewManager("home_cache=off")})
	alice := testutil.CreateUser(t, f.db, "alice")
	testutil.CreatePost(t, f.db, alice, nil, "one")

	_, err := f.feed.Home(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}
