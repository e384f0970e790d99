package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/leolibre/leolibre-backend/internal/config"
	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/service"
)

// Development utility: mints a club-scoped JWT without going through the
// enrollment flow. Useful for exercising the API and the e2e suite.
func main() {
	var (
		userID int64
		clubID int64
		role   string
	)
	flag.Int64Var(&userID, "user", 1, "user id to embed in the token")
	flag.Int64Var(&clubID, "club", 1, "club id the token is scoped to")
	flag.StringVar(&role, "role", "MEMBER", "role: FOUNDER or MEMBER")
	flag.Parse()

	r := model.Role(role)
	if r != model.RoleFounder && r != model.RoleMember {
		log.Fatalf("invalid role %q: want FOUNDER or MEMBER", role)
	}

	cfg := config.Load()
	authService := service.NewAuthService(cfg)

	token, err := authService.GenerateToken(userID, clubID, r)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}

	fmt.Println(token)
}
