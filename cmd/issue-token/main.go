package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/pkg/jwt"
)

// issue-token mints an access token for local testing. Production tokens
// are issued by the identity service with the same secret.
func main() {
	var (
		userFlag  string
		rolesFlag string
		ttl       time.Duration
	)
	flag.StringVar(&userFlag, "user", "", "user ID (random when empty)")
	flag.StringVar(&rolesFlag, "roles", "PASSENGER", "comma separated roles: PASSENGER, DRIVER, ADMIN, COMPANY_ADMIN")
	flag.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	userID := uuid.New()
	if userFlag != "" {
		parsed, err := uuid.Parse(userFlag)
		if err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
		userID = parsed
	}

	var roles []string
	for _, raw := range strings.Split(rolesFlag, ",") {
		role, ok := models.ParseRole(raw)
		if !ok {
			log.Fatalf("unknown role %q", raw)
		}
		roles = append(roles, string(role))
	}

	token, err := jwt.NewService(secret, ttl).GenerateAccessToken(userID, roles)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("user_id: %s\n", userID)
	fmt.Printf("roles:   %s\n", strings.Join(roles, ","))
	fmt.Printf("expires: %s\n", time.Now().Add(ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Println(token)
}
