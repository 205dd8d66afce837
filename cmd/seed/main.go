// Command main runs the database seeder for blogfeed.
package main

import (
	"flag"
	"log"

	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	// Parse command line flags
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	comments := flag.Int("comments", defaults.CommentsPerPost, "Average comments per post")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Authors followed by each user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build the data set without writing it")
	fast := flag.Bool("fast-hash", false, "Hash passwords with the minimum bcrypt cost")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	preset := flag.String("preset", "", "YAML preset file overriding the flags")
	flag.Parse()

	opts := defaults
	opts.NumUsers = *numUsers
	opts.NumPosts = *numPosts
	opts.CommentsPerPost = *comments
	opts.FollowsPerUser = *follows
	opts.DryRun = *dryRun
	opts.FastHash = *fast
	opts.RandomSeed = *randomSeed

	groups := seed.BuiltInGroups
	if *preset != "" {
		p, err := seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		opts = p.Options(opts)
		groups = p.GroupList()
		log.Printf("Applying preset: %s", p.Name)
	}
	log.Printf("Target: %d users, %d posts, clean=%v", opts.NumUsers, opts.NumPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, opts)
	if *shouldClean && !opts.DryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(groups); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Printf("All test users have the password: %s", seed.DefaultPassword)
}
