// Command main runs the database seeder for chirp.
package main

import (
	"flag"
	"log"
	"log/slog"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a seeder preset (minimal, standard, populated)")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing (seeded accounts cannot log in)")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing to the database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, "info")

	if *preset != "" {
		middleware.Logger.Info("applying preset, ignoring size flags", slog.String("preset", *preset))
	} else {
		middleware.Logger.Info("seeding",
			slog.Int("users", *numUsers), slog.Int("posts", *numPosts), slog.Bool("clean", *shouldClean))
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *fast, DryRun: *dryRun, MaxDays: 90, BatchSize: 200})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *preset != "" {
		if err := s.ApplyPreset(*preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
	} else {
		users, err := s.SeedSocialMesh(*numUsers)
		if err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if _, err := s.SeedEngagement(users, *numPosts); err != nil {
			log.Fatalf("Engagement seeding failed: %v", err)
		}
	}

	middleware.Logger.Info("seeding complete", slog.String("password", seed.DefaultPassword))
}
