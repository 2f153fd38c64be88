package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"hermes/internal/adapters/config"
	"hermes/internal/adapters/embeddings"
	"hermes/internal/adapters/postgres"
	"hermes/internal/domain/record"
	"hermes/internal/ingest"
	repo "hermes/internal/repository/postgres"
	"hermes/pkg/logger"
)

func main() {
	var (
		sentimentPath = flag.String("sentiment", "./data/sentiment.csv", "path to the customer sentiment CSV")
		purchasePath  = flag.String("purchase", "./data/purchases.csv", "path to the purchase behavior CSV")
		campaignPath  = flag.String("campaign", "./data/campaigns.csv", "path to the campaign history CSV")
		batchSize     = flag.Int("batch-size", 128, "documents per embedding batch")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get().With("component", "ingest-cli")

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	embedder, err := embeddings.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}
	log.Infof("Embedding provider: %s (%d dimensions)", embedder.Name(), embedder.Dimensions())

	recordRepo := repo.NewRecordRepository(pgClient.DB())

	ctx := context.Background()
	if err := recordRepo.EnsureSchema(ctx, embedder.Dimensions()); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	ingestor := ingest.New(recordRepo, embedder, *batchSize)

	datasets := []struct {
		ns   record.Namespace
		path string
	}{
		{record.NamespaceSentiment, *sentimentPath},
		{record.NamespacePurchase, *purchasePath},
		{record.NamespaceCampaign, *campaignPath},
	}

	start := time.Now()
	total := 0
	failed := false

	for _, ds := range datasets {
		if _, err := os.Stat(ds.path); err != nil {
			log.Warnf("%s: %s does not exist, skipping", ds.ns, ds.path)
			continue
		}

		rows, err := ingest.ReadCSV(ds.path)
		if err != nil {
			log.Errorf("Failed to read %s: %v", ds.path, err)
			failed = true
			continue
		}

		stored, err := ingestor.IngestDataset(ctx, ds.ns, rows)
		total += stored
		if err != nil {
			log.Errorf("Failed to ingest %s: %v", ds.ns, err)
			failed = true
			continue
		}

		count, err := recordRepo.Count(ctx, ds.ns)
		if err == nil {
			log.Infof("%s: stored %s records (namespace now holds %s)",
				ds.ns, humanize.Comma(int64(stored)), humanize.Comma(count))
		}
	}

	log.Infof("Ingestion finished: %s records in %s",
		humanize.Comma(int64(total)), time.Since(start).Round(time.Millisecond))

	if failed {
		os.Exit(1)
	}
}
