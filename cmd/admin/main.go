// Package main provides group and user administration for blogfeed.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create-group <title> [description]  - Create a group")
	fmt.Println("  go run ./cmd/admin list-groups                         - List all groups")
	fmt.Println("  go run ./cmd/admin delete-group <slug>                 - Delete a group, keeping its posts")
	fmt.Println("  go run ./cmd/admin delete-user <username>              - Delete a user and everything they wrote")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	groups := repository.NewGroupRepository(db)
	users := repository.NewUserRepository(db)

	switch os.Args[1] {
	case "create-group":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		err = createGroup(ctx, groups, os.Args[2], argOr(3, ""))
	case "list-groups":
		err = listGroups(ctx, groups)
	case "delete-group":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		err = deleteGroup(ctx, groups, os.Args[2])
	case "delete-user":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		err = deleteUser(ctx, users, os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func argOr(i int, fallback string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return fallback
}

func createGroup(ctx context.Context, groups repository.GroupRepository, title, description string) error {
	group := &models.Group{Title: title}
	if description != "" {
		group.Description = &description
	}
	if err := groups.Create(ctx, group); err != nil {
		return err
	}
	fmt.Printf("Created group %q (ID: %d, slug: %s)\n", group.Title, group.ID, group.Slug)
	return nil
}

func listGroups(ctx context.Context, groups repository.GroupRepository) error {
	list, err := groups.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No groups found")
		return nil
	}
	for _, g := range list {
		fmt.Printf("ID: %d | Slug: %s | Title: %s\n", g.ID, g.Slug, g.Title)
	}
	return nil
}

func deleteGroup(ctx context.Context, groups repository.GroupRepository, slug string) error {
	group, err := groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := groups.Delete(ctx, group.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted group %s; its posts are now ungrouped\n", slug)
	return nil
}

func deleteUser(ctx context.Context, users repository.UserRepository, username string) error {
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := users.Delete(ctx, user.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted user %s (ID: %d)\n", user.Username, user.ID)
	return nil
}
