// Command token issues access tokens for local development and operations.
//
//	go run ./cmd/token -user 2b1d8f0e-6b1c-4f4e-9b55-0d6c1c3b9a10 -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"staff-directory/internal/config"
	"staff-directory/pkg/jwt"
	"staff-directory/pkg/logger"
)

func main() {
	userFlag := flag.String("user", "", "user id (a new one is generated when empty)")
	roleFlag := flag.String("role", "user", "role claim: user or admin")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init("development")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if *roleFlag != "user" && *roleFlag != "admin" {
		log.Fatal().Str("role", *roleFlag).Msg("role must be user or admin")
	}

	userID := *userFlag
	if userID == "" {
		userID = uuid.NewString()
	} else if _, err := uuid.Parse(userID); err != nil {
		log.Fatal().Err(err).Msg("user must be a UUID")
	}

	token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL).GenerateAccessToken(userID, *roleFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	fmt.Fprintf(os.Stderr, "user_id=%s role=%s ttl=%s\n", userID, *roleFlag, cfg.JWT.AccessTTL)
	fmt.Println(token)
}
