package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/export"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

func main() {
	var (
		recordType = flag.String("type", "", "record type to export (required)")
		out        = flag.String("out", "", "output XLSX path (default <type>.xlsx)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rt, ok := constants.Canonicalize(*recordType)
	if !ok {
		logger.Error("unknown record type", "type", *recordType, "known", constants.AsStringSlice())
		os.Exit(2)
	}
	if *out == "" {
		*out = string(rt) + ".xlsx"
	}

	cfg := common.LoadConfig()
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}
	engine := store.NewEngine(dynamodb.NewFromConfig(awsCfg), cfg.Storage.TableName, logger)

	workbook, err := export.NewService(engine, logger).ExportTypeXLSX(ctx, rt)
	if err != nil {
		logger.Error("export failed", "type", rt, "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, workbook, 0o644); err != nil {
		logger.Error("write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(workbook))
}
