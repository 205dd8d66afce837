package seed

import (
	"fmt"
	"log"

	"blogfeed/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	FollowsPerUser  int
	// GroupedShare is the fraction of posts placed in a group.
	GroupedShare float64
	MaxDays      int
	// FastHash uses the minimum bcrypt cost.
	FastHash   bool
	DryRun     bool
	RandomSeed int64
}

// DefaultOptions is the data set of `cmd/seed` without flags.
func DefaultOptions() Options {
	return Options{
		NumUsers:        20,
		NumPosts:        120,
		CommentsPerPost: 3,
		FollowsPerUser:  4,
		GroupedShare:    0.6,
		MaxDays:         90,
	}
}

// BuiltInGroup is a group every seeded database starts with.
type BuiltInGroup struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// BuiltInGroups defines the default groups.
var BuiltInGroups = []BuiltInGroup{
	{Title: "Travel", Description: "Trips, routes and places worth the detour."},
	{Title: "Books", Description: "Reading lists and reviews."},
	{Title: "Cooking", Description: "Recipes and kitchen experiments."},
	{Title: "Photography", Description: "Gear, technique and favourite shots."},
	{Title: "Programming", Description: "Code, tools and war stories."},
	{Title: "Music", Description: "Albums, concerts and discoveries."},
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seeder fills a database with a connected demo graph.
type Seeder struct {
	db *gorm.DB
	f  *Factory
}

// NewSeeder returns a seeder whose factory uses opts.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, f: NewFactory(db, opts)}
}

// ClearAll deletes all rows, children first.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, table := range []interface{}{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// Groups upserts groups by slug.
func (s *Seeder) Groups(groups []BuiltInGroup) ([]*models.Group, error) {
	out := make([]*models.Group, 0, len(groups))
	for _, g := range groups {
		group, err := s.f.EnsureGroup(g.Title, g.Description)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Title, err)
		}
		out = append(out, group)
	}
	return out, nil
}

// Run seeds groups, users, posts, comments and follows.
func (s *Seeder) Run(groupSpecs []BuiltInGroup) (Summary, error) {
	opts := s.f.opts
	var sum Summary
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	groups, err := s.Groups(groupSpecs)
	if err != nil {
		return sum, err
	}
	sum.Groups = len(groups)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := s.f.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.f.rnd.Intn(len(users))]
		var group *models.Group
		if len(groups) > 0 && s.f.rnd.Float64() < opts.GroupedShare {
			group = groups[s.f.rnd.Intn(len(groups))]
		}
		posts = append(posts, s.f.BuildPost(author, group))
	}
	if err := s.f.CreatePostsBatch(posts); err != nil {
		return sum, fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)

	for _, p := range posts {
		n := 0
		if opts.CommentsPerPost > 0 {
			n = s.f.rnd.Intn(opts.CommentsPerPost*2 + 1)
		}
		for j := 0; j < n; j++ {
			if _, err := s.f.CreateComment(users[s.f.rnd.Intn(len(users))], p); err != nil {
				return sum, fmt.Errorf("failed to create comment: %w", err)
			}
			sum.Comments++
		}
	}

	for _, u := range users {
		made := 0
		for _, idx := range s.f.rnd.Perm(len(users)) {
			if made >= opts.FollowsPerUser {
				break
			}
			author := users[idx]
			if author.ID == u.ID {
				continue
			}
			if err := s.f.CreateFollow(u, author); err != nil {
				return sum, fmt.Errorf("failed to create follow: %w", err)
			}
			made++
		}
		sum.Follows += made
	}

	log.Printf("Seeded %d groups, %d users, %d posts, %d comments, %d follows",
		sum.Groups, sum.Users, sum.Posts, sum.Comments, sum.Follows)
	return sum, nil
}
