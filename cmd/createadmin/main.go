package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/examgate/examgate/domain/entity"
	"github.com/examgate/examgate/infrastructure/config"
	"github.com/examgate/examgate/infrastructure/persistence/postgres"
	"github.com/examgate/examgate/infrastructure/service/password"
)

// Seeds an admin account. Usage: createadmin [username] [password] [full name]
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	username := "admin"
	userPassword := "admin123"
	fullName := "Administrator"

	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if len(os.Args) > 2 {
		userPassword = os.Args[2]
	}
	if len(os.Args) > 3 {
		fullName = os.Args[3]
	}

	passwordService := password.NewBcryptPasswordService(10)
	hashedPassword, err := passwordService.HashPassword(userPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	adminUser := entity.NewUser(uuid.New().String(), username, hashedPassword, entity.RoleAdmin)
	adminUser.FullName = fullName
	adminUser.AccountStatus = "Active"

	userRepo := postgres.NewUserRepository(db)
	if err := userRepo.Create(ctx, adminUser); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user %q created with id %s\n", username, adminUser.ID)
}
