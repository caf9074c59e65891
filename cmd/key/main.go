package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fleet-tracker/internal/cli"
)

func main() {
	var (
		userID = flag.String("user-id", "", "Subject of the token (dashboard or operator ID)")
		role   = flag.String("role", "DASHBOARD", "User role: DASHBOARD | ADMIN")
		secret = flag.String("secret", "", "JWT HMAC secret (HS256), same as jwt.secret_key")
		ttl    = flag.Duration("ttl", 2*time.Hour, "Token lifetime")
	)
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: key --user-id=<id> --role=DASHBOARD --secret='<secret>' [--ttl=2h]")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateUserToken(*secret, *ttl, *userID, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("TOKEN:")
	fmt.Println(token)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:  %s\n", claims.Subject)
	fmt.Printf("  role: %s\n", claims.Role)
	fmt.Printf("  iat:  %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:  %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	fmt.Println("\nWebSocket: ws://localhost:3002/ws?Authorization=Bearer%20" + token)
}
