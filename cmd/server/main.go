package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/db"
	"portfolio/internal/docstore"
	"portfolio/internal/gate"
	"portfolio/internal/handlers"
	"portfolio/internal/retry"
	"portfolio/internal/summary"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Create data dir for DB
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal(err)
	}

	dbc, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer dbc.Close()

	if err := db.Migrate(dbc); err != nil {
		log.Fatal(err)
	}

	store := docstore.New(dbc)

	// Observed behavior is no retry anywhere; swap in a retry.Policy here to
	// change that for reads and gate fetches without touching the workflow.
	blogs := content.NewAdapter(store, content.Blogs, content.NormalizeBlog, retry.None)
	comments := content.NewAdapter(store, content.Comments, content.NormalizeComment, retry.None)
	links := content.NewAdapter(store, content.Links, content.NormalizeLink, retry.None)

	verifier := gate.NewStoreVerifier(store, retry.None)
	summarizer := summary.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.SummaryModel)

	site, err := config.LoadSite(cfg.SitePath)
	if err != nil {
		log.Printf("site config: %v (serving empty profile)", err)
	}

	h := handlers.New(store, blogs, comments, links, verifier, summarizer, site)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, handlers.WithRecover(h.Routes())); err != nil {
		log.Fatal(err)
	}
}
