package main

import (
	"flag"

	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

func main() {
	password := flag.String("password", "testpassword123", "Password given to every seeded user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to hash password")
	}

	seedUsers := []models.User{
		{Email: "admin@example.com", Username: "admin", FirstName: "Admin", LastName: "User", Role: models.RoleAdmin},
		{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe", Role: models.RoleUser},
		{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith", Role: models.RoleUser},
		{Email: "ivan.petrov@example.com", Username: "ivanpetrov", FirstName: "Иван", LastName: "Петров", Role: models.RoleUser},
	}

	created := 0
	for _, user := range seedUsers {
		var count int64
		if err := db.Model(&models.User{}).
			Where("email = ? OR username = ?", user.Email, user.Username).
			Count(&count).Error; err != nil {
			logging.Fatal().Err(err).Msg("failed to look up user")
		}
		if count > 0 {
			logging.Info().Str("email", user.Email).Msg("user already exists, skipping")
			continue
		}

		user.PasswordHash = string(hashedPassword)
		if err := db.Create(&user).Error; err != nil {
			logging.Error().Err(err).Str("email", user.Email).Msg("failed to create user")
			continue
		}
		created++
		logging.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("created user")
	}

	logging.Info().Int("created", created).Msg("seeding finished")
}
