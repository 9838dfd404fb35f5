package main

import (
	"net/http"
	"os"

	"github.com/Nityasav/wyldstoneja/pkg/config"
	"github.com/Nityasav/wyldstoneja/pkg/store"
)

func main() {
	settings, err := config.LoadSettings("webserver", os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log, err := settings.NewLogger()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	db, err := store.Open(settings.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer db.Close()

	srv := NewServer(settings, db, log)

	log.WithField("addr", settings.Addr).Info("Brace game web server starting")
	log.Fatalln(http.ListenAndServe(settings.Addr, srv))
}
