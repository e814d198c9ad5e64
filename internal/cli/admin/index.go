package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/config"
	"github.com/cloo-solutions/partsdesk/internal/service"
	"github.com/cloo-solutions/partsdesk/internal/storage"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <catalog>",
		Short: "Embed a catalog export into the vector index",
		Long: `Read a JSONL catalog export (one part per line) and upsert its overview,
compatibility and installation chunks into the configured vector index.

The catalog may be a local path or an s3://bucket/key URI.`,
		Example: `partsdeskd index ./data/parts.jsonl
partsdeskd index s3://partsdesk-catalog/parts.jsonl --batch-size 100`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().Int("batch-size", service.DefaultIndexBatchSize, "Chunks embedded per provider call")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	ctx, span := telemetry.StartTransaction(cmd.Context(), "index catalog", "catalog.index")
	defer span.End()

	llm, err := newLanguageModel(cfg)
	if err != nil {
		return err
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	index, closeIndex, err := openIndex(ctx, cfg, !noMigrate)
	if err != nil {
		return err
	}
	defer closeIndex()

	objects, err := catalogObjects(ctx, cfg, source)
	if err != nil {
		return err
	}

	catalog, err := storage.OpenCatalog(ctx, source, objects)
	if err != nil {
		return err
	}
	defer catalog.Close()

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	indexer := service.NewCatalogIndexer(llm, index, batchSize)

	stats, err := indexer.IndexCatalog(ctx, catalog)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to index catalog: %w", err)
	}

	total, err := index.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count indexed chunks")
	}

	log.Info().
		Str("source", source).
		Int("parts", stats.Parts).
		Int("chunks", stats.Chunks).
		Int("batches", stats.Batches).
		Int("skipped", stats.Skipped).
		Int("index_total", total).
		Msg("catalog indexed")

	if stats.Skipped > 0 {
		telemetry.CaptureMessage(ctx, fmt.Sprintf("catalog %s: skipped %d records without a part number", source, stats.Skipped))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d parts (%d chunks, %d skipped)\n", stats.Parts, stats.Chunks, stats.Skipped)
	return nil
}

// catalogObjects returns an S3 reader for s3:// sources and nil otherwise
func catalogObjects(ctx context.Context, cfg *config.Config, source string) (storage.ObjectOpener, error) {
	if !strings.HasPrefix(source, "s3://") {
		return nil, nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    cfg.S3Endpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return client, nil
}
