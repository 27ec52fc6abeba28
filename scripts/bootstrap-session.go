// Command bootstrap-session creates a user and a live session for
// local development. The identity provider normally writes session
// records; this stands in for it so the API can be exercised without
// one. Prints the session token, which never touches the database in
// plaintext.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/repository"
)

type output struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	Fingerprint string    `json:"fingerprint"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "dev@homelet.local", "User email")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Session lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := repo.GetOrCreateUser(ctx, &model.User{
		ID:        ulid.Make().String(),
		Email:     *email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ensure user:", err)
		os.Exit(1)
	}

	token, err := generateToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash token:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	session := &model.Session{
		Fingerprint: auth.Fingerprint(token),
		TokenHash:   hash,
		UserID:      user.ID,
		ExpiresAt:   now.Add(*ttl),
		CreatedAt:   now,
	}

	if err := repo.CreateSession(ctx, session); err != nil {
		fmt.Fprintln(os.Stderr, "create session:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      user.ID,
		Email:       user.Email,
		Token:       token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "hl_" + hex.EncodeToString(buf), nil
}
