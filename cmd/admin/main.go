// Package main provides admin management utilities for Homestead.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"homestead/internal/bootstrap"
	"homestead/internal/config"
	"homestead/internal/models"
	"homestead/internal/repository"
	"homestead/internal/service"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin createsuperuser <email> <name> <password>  - Create an admin account")
		fmt.Println("  go run ./cmd/admin list-admins                                - List all admin accounts")
		fmt.Println("  go run ./cmd/admin deactivate <email>                         - Deactivate an account")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipDevSuperuser: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	switch os.Args[1] {
	case "createsuperuser":
		if len(os.Args) < 5 {
			fmt.Println("Usage: go run ./cmd/admin createsuperuser <email> <name> <password>")
			os.Exit(1)
		}
		createSuperuser(db, os.Args[2], os.Args[3], os.Args[4])

	case "list-admins":
		listAdmins(db)

	case "deactivate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin deactivate <email>")
			os.Exit(1)
		}
		deactivate(db, os.Args[2])

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func createSuperuser(db *gorm.DB, email, name, password string) {
	accounts := service.NewAccountService(repository.NewAccountRepository(db), nil, nil, nil)
	account, err := accounts.CreateSuperuser(context.Background(), email, name, password)
	if err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}
	fmt.Printf("Created superuser %s (ID: %d)\n", account.Email, account.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.Account
	if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admin accounts found")
		return
	}
	for _, a := range admins {
		status := "active"
		if !a.IsActive {
			status = "inactive"
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", a.ID, a.Email, a.Name, status)
	}
}

func deactivate(db *gorm.DB, email string) {
	repo := repository.NewAccountRepository(db)
	account, err := repo.GetByEmail(context.Background(), email)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	if account == nil {
		fmt.Printf("Account %s not found\n", email)
		os.Exit(1)
	}
	account.IsActive = false
	if err := repo.Update(context.Background(), account); err != nil {
		log.Fatalf("Failed to deactivate account: %v", err)
	}
	fmt.Printf("Deactivated %s\n", email)
}
