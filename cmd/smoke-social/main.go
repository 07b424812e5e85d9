package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"pawpark.app/internal/identity"
	"pawpark.app/internal/social"
	"pawpark.app/internal/social/remote"
)

func main() {
	baseURL := os.Getenv("PAWPARK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	secret := os.Getenv("PAWPARK_TOKEN_SECRET")
	if secret == "" {
		log.Fatal("PAWPARK_TOKEN_SECRET is required to mint smoke tokens")
	}

	verifier, err := identity.NewVerifier(secret)
	if err != nil {
		log.Fatalf("verifier: %v", err)
	}

	suffix := rand.New(rand.NewSource(time.Now().UnixNano())).Int31()
	aliceID := fmt.Sprintf("smoke-alice-%d", suffix)
	bobID := fmt.Sprintf("smoke-bob-%d", suffix)

	alice := client(verifier, baseURL, aliceID)
	bob := client(verifier, baseURL, bobID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Profiles bootstrap on first contact.
	if _, err := alice.Profile(ctx); err != nil {
		log.Fatalf("alice profile: %v", err)
	}
	if _, err := bob.Profile(ctx); err != nil {
		log.Fatalf("bob profile: %v", err)
	}

	// Pair and verify the edge exists on both sides.
	if err := alice.Pair(ctx, bobID); err != nil {
		log.Fatalf("pair: %v", err)
	}
	assertEdge(ctx, alice, aliceID, bobID)
	assertEdge(ctx, bob, bobID, aliceID)

	// Re-pairing must not duplicate edges.
	if err := bob.Pair(ctx, aliceID); err != nil {
		log.Fatalf("re-pair: %v", err)
	}
	assertEdge(ctx, alice, aliceID, bobID)

	// A quick pass over the rest of the surface.
	if _, err := alice.SetDogs(ctx, []social.Dog{{Name: "Rex"}}); err != nil {
		log.Fatalf("set dogs: %v", err)
	}
	parks, err := alice.Parks(ctx)
	if err != nil {
		log.Fatalf("parks: %v", err)
	}
	if len(parks) > 0 {
		fav, err := alice.ToggleFavorite(ctx, parks[0].ID)
		if err != nil {
			log.Fatalf("toggle favorite: %v", err)
		}
		if !fav {
			log.Fatalf("expected first toggle to favorite %s", parks[0].ID)
		}
		if _, err := alice.AddRating(ctx, parks[0].ID, 5, "smoke test visit"); err != nil {
			log.Fatalf("add rating: %v", err)
		}
	}

	fmt.Printf("smoke test passed: users=%s,%s parks=%d\n", aliceID, bobID, len(parks))
}

func client(v *identity.Verifier, baseURL, userID string) *remote.Client {
	token, err := v.GenerateToken(userID, false, time.Hour)
	if err != nil {
		log.Fatalf("token for %s: %v", userID, err)
	}
	return remote.New(baseURL, token)
}

func assertEdge(ctx context.Context, c *remote.Client, owner, friend string) {
	conns, err := c.Connections(ctx)
	if err != nil {
		log.Fatalf("connections for %s: %v", owner, err)
	}
	count := 0
	for _, conn := range conns {
		if conn.FriendID == friend {
			count++
		}
	}
	if count != 1 {
		log.Fatalf("expected exactly one edge %s->%s, found %d", owner, friend, count)
	}
}
