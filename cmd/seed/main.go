// Command main runs the database seeder for Homestead.
package main

import (
	"flag"
	"log"

	"homestead/internal/bootstrap"
	"homestead/internal/config"
	"homestead/internal/seed"
)

func main() {
	numRealtors := flag.Int("realtors", 10, "Number of realtor accounts to create")
	numUsers := flag.Int("users", 25, "Number of regular accounts to create")
	perRealtor := flag.Int("listings", 5, "Approximate listings per realtor")
	shouldClean := flag.Bool("clean", true, "Clear database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipDevSuperuser: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}
	if err := s.SeedDemo(*numRealtors, *numUsers, *perRealtor); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded demo data; every account's password is %q", seed.DemoPassword)
}
