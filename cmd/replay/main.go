package main

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

func main() {
	settings, err := config.LoadSettings("replay", os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log, err := settings.NewLogger()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	server := NewReplayServer(settings.RecordDir, settings.StaticDir, log)

	log.WithFields(logrus.Fields{
		"addr":    settings.Addr,
		"records": settings.RecordDir,
	}).Info("📼 Replay viewer starting")
	log.Fatalln(http.ListenAndServe(settings.Addr, server))
}
