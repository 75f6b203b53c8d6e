package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/kosara/inventar/internal/db"
	"github.com/kosara/inventar/internal/suggest"
	"github.com/kosara/inventar/internal/web"
)

func main() {
	dbPath := flag.String("db", defaultDBPath(), "path to SQLite database file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	// Suggestions are optional; without a key the endpoint answers with
	// a scoped error and the rest of the app works normally.
	var suggester *suggest.Client
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		suggester, err = suggest.NewClient(suggest.Config{APIKey: key})
		if err != nil {
			log.Fatalf("Failed to set up suggestion client: %v", err)
		}
	} else {
		log.Println("GEMINI_API_KEY not set, item suggestions disabled")
	}

	router, err := web.NewRouter(database, suggester)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	fmt.Printf("Server listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, web.LoggingMiddleware(router)); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// defaultDBPath prefers the INVENTAR_DB environment variable.
func defaultDBPath() string {
	if p := os.Getenv("INVENTAR_DB"); p != "" {
		return p
	}
	return "inventar.sqlite3"
}
