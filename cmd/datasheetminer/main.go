package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/content"
	"github.com/joseph-ayodele/datasheet-miner/internal/llm/gemini"
	processor "github.com/joseph-ayodele/datasheet-miner/internal/pipeline"
	"github.com/joseph-ayodele/datasheet-miner/internal/schema"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

func main() {
	var (
		url          = flag.String("url", "", "datasheet URL or local file path")
		recordType   = flag.String("type", "", "record type (motor, drive, gearhead, robot_arm)")
		pages        = flag.String("pages", "", "one-based page ranges, e.g. \"1,3:5\"")
		name         = flag.String("name", "", "product name, if already known")
		manufacturer = flag.String("manufacturer", "", "manufacturer, if already known")
		family       = flag.String("family", "", "product family, if already known")
		manifest     = flag.String("manifest", "", "JSON manifest of documents to mine (batch mode)")
		workers      = flag.Int("workers", 1, "concurrent documents in batch mode")
		out          = flag.String("out", "", "report output path (default stdout)")
		withRecords  = flag.Bool("records", false, "include validated records in the report")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *manifest == "" && (*url == "" || *recordType == "") {
		logger.Error("either -manifest, or both -url and -type, are required")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}
	engine := store.NewEngine(dynamodb.NewFromConfig(awsCfg), cfg.Storage.TableName, logger)

	extractor, err := gemini.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("create gemini client", "error", err)
		os.Exit(1)
	}

	registry, err := schema.NewRegistry()
	if err != nil {
		logger.Error("build schema registry", "error", err)
		os.Exit(1)
	}

	acquirer := content.NewAcquirer(cfg.Fetch.Timeout, logger)
	proc := processor.NewProcessor(acquirer, extractor, registry, engine, logger)
	proc.KeepRecords = *withRecords

	if *manifest != "" {
		m, err := processor.LoadManifest(*manifest)
		if err != nil {
			logger.Error("load manifest", "path", *manifest, "error", err)
			os.Exit(1)
		}
		var report *processor.BatchReport
		if *workers > 1 {
			queue := processor.NewDocumentQueue(proc, logger, processor.WithWorkers(*workers))
			report = queue.Drain(m)
		} else {
			report = proc.RunManifest(ctx, m)
		}
		if err := processor.WriteReport(report, *out, os.Stdout); err != nil {
			logger.Error("write report", "error", err)
			os.Exit(1)
		}
		if report.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	summary, err := proc.ProcessDocument(ctx, processor.Request{
		Source:        *url,
		RecordType:    constants.RecordType(*recordType),
		Pages:         *pages,
		ProductName:   *name,
		Manufacturer:  *manufacturer,
		ProductFamily: *family,
	})
	if writeErr := processor.WriteReport(summary, *out, os.Stdout); writeErr != nil {
		logger.Error("write report", "error", writeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
