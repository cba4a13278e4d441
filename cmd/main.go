package main

import (
	"os"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := rootApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("intel-feed exited with error")
	}
}
