// mint-token creates a signed service token for a collaborator service,
// e.g. the proctoring backend. Run it on a host that shares the engine's
// SERVICE_TOKEN_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/middleware"
	"github.com/hirestack/assessment-engine/internal/router"
)

func main() {
	var (
		service = flag.String("service", "", "Name of the calling service (required)")
		scope   = flag.String("scope", router.ScopeProctor, "Scope granted to the token")
	)
	flag.Parse()

	if *service == "" {
		flag.Usage()
		log.Fatal("-service is required")
	}

	cfg := config.Load()

	token, err := middleware.GenerateServiceToken(cfg, *service, *scope)
	if err != nil {
		log.Fatalf("Failed to mint token: %v", err)
	}

	fmt.Println(token)
}
