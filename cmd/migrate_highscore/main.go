package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Nityasav/wyldstoneja/pkg/config"
	"github.com/Nityasav/wyldstoneja/pkg/store"
)

// main imports a browser localStorage export, a JSON object of string keys
// to string values, into the SQLite store. The stored high score only ever
// goes up.
func main() {
	settings, err := config.LoadSettings("migrate_highscore", os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log, err := settings.NewLogger()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	path := "localstorage.json"
	if len(settings.Args) > 0 {
		path = settings.Args[0]
	}

	// 1. Check if the export exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("%s not found. Export localStorage from the browser and place it here.", path)
	}

	// 2. Read and parse
	score, err := readExport(path)
	if err != nil {
		log.WithError(err).Fatal("Failed to parse export")
	}

	// 3. Open SQLite DB
	db, err := store.Open(settings.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer db.Close()

	// 4. Migrate
	imported, err := migrate(db, score)
	if err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
	log.WithFields(logrus.Fields{
		"score":    score,
		"imported": imported,
		"db":       settings.DBPath,
	}).Info("Migration complete")
	fmt.Printf("✅ Migration complete! High score in %s is now %d\n", settings.DBPath, currentOr(db, score))
}

// readExport pulls the high score out of a localStorage dump. Browsers
// store every value as a string, but numbers are accepted too.
func readExport(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read export: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(content, &entries); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}
	raw, ok := entries[config.HighScoreKey]
	if !ok {
		return 0, fmt.Errorf("key %q missing from export", config.HighScoreKey)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n int
		if err2 := json.Unmarshal(raw, &n); err2 != nil {
			return 0, fmt.Errorf("high score value %s: %w", raw, err)
		}
		return n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("high score value %q: %w", s, err)
	}
	return n, nil
}

// migrate stores score unless the database already holds a higher one
func migrate(db *store.Store, score int) (bool, error) {
	return db.SetIfHigher(config.HighScoreKey, score)
}

func currentOr(db *store.Store, fallback int) int {
	v, ok, err := db.Get(config.HighScoreKey)
	if err != nil || !ok {
		return fallback
	}
	return v
}
