package main

import (
	"flag"

	"clinic-booking-api/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional env file")
	flag.Parse()

	app, err := bootstrap.New(*envFile)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	app.Run()
}
