// secretctl writes a gate secret into the document store, e.g.
//
//	secretctl -db ./data/portfolio.db -name links_password -value hunter2
//
// Secrets live at secrets/<name> with a single "value" field; the server
// reads them for gated submissions.
package main

import (
	"context"
	"flag"
	"log"

	"portfolio/internal/db"
	"portfolio/internal/docstore"
)

func main() {
	dbPath := flag.String("db", "./data/portfolio.db", "path to the sqlite database")
	name := flag.String("name", "", "secret document name, e.g. blog_password")
	value := flag.String("value", "", "secret value")
	flag.Parse()

	if *name == "" || *value == "" {
		log.Fatal("both -name and -value are required")
	}

	dbc, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer dbc.Close()

	if err := db.Migrate(dbc); err != nil {
		log.Fatal(err)
	}

	store := docstore.New(dbc)
	if err := store.Put(context.Background(), "secrets", *name, map[string]any{"value": *value}); err != nil {
		log.Fatal(err)
	}
	log.Printf("secret %q set", *name)
}
