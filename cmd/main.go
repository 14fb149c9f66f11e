package main

import (
	"fmt"

	"doctor-scheduling/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	issueToken := pflag.String("issue-token", "", "print an access token for the given subject and exit")
	role := pflag.String("role", "admin", "role claim of the issued token")
	pflag.Parse()

	if *issueToken != "" {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		token, err := bootstrap.IssueToken(cfg, *issueToken, *role)
		if err != nil {
			logrus.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	app.Run()
}
