package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/hatlabs/cockpit-apps-bridge/internal/cli"
)

func main() {
	// Setup logging format; stdout is reserved for JSON results.
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	os.Exit(cli.Execute())
}
