// Command report genera el reporte de un sujeto desde el store persistido,
// sin pasar por el servidor HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dossier-llm/internal/config"
	"dossier-llm/internal/domain"
	"dossier-llm/internal/export"
	"dossier-llm/internal/kv"
	"dossier-llm/internal/repository"
)

func main() {
	subjectID := flag.String("subject", "", "subject id (default: active subject)")
	formatArg := flag.String("format", "text", "report format: json, text or html")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	format, err := export.ParseFormat(*formatArg)
	if err != nil {
		log.Fatal(err)
	}

	// Mismo backend que el servidor: si el API corre sobre Redis, el reporte
	// tiene que salir de ese mismo store.
	kvStore, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	repo := repository.NewKVStoreRepository(kvStore, logger)

	store, err := repo.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}

	id := *subjectID
	if id == "" {
		id = store.ActiveID
	}
	profile, ok := store.Profiles[id]
	if !ok {
		log.Fatalf("subject %q not found", id)
	}

	body, err := render(profile, format)
	if err != nil {
		log.Fatal(err)
	}

	outPath := filepath.Join(*outDir, export.FileName(profile, format, time.Now()))
	if err := os.WriteFile(outPath, body, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println(outPath)
}

func render(profile domain.Profile, format export.Format) ([]byte, error) {
	switch format {
	case export.FormatJSON:
		return export.JSON(profile)
	case export.FormatHTML:
		doc, err := export.HTML(profile)
		return []byte(doc), err
	default:
		return []byte(export.Text(profile)), nil
	}
}
