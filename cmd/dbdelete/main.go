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
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

func main() {
	var (
		all        = flag.Bool("all", false, "delete every record in the table")
		recordType = flag.String("type", "", "delete every record of one type")
		family     = flag.String("family", "", "delete every record in a product family")
		duplicates = flag.String("duplicates", "", "delete duplicate records within a type, keeping the first of each group")
		dryRun     = flag.Bool("dry-run", false, "report what would be deleted without prompting")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	modes := 0
	for _, set := range []bool{*all, *recordType != "", *family != "", *duplicates != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		logger.Error("exactly one of -all, -type, -family, -duplicates is required")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}
	engine := store.NewEngine(dynamodb.NewFromConfig(awsCfg), cfg.Storage.TableName, logger)
	admin := store.NewAdmin(engine, os.Stdin, os.Stdout)

	var deleted int
	switch {
	case *all:
		deleted, err = admin.DeleteAll(ctx, *dryRun)
	case *recordType != "":
		rt, ok := constants.Canonicalize(*recordType)
		if !ok {
			logger.Error("unknown record type", "type", *recordType)
			os.Exit(2)
		}
		deleted, err = admin.DeleteByType(ctx, rt, *dryRun)
	case *family != "":
		deleted, err = admin.DeleteByFamily(ctx, *family, *dryRun)
	default:
		rt, ok := constants.Canonicalize(*duplicates)
		if !ok {
			logger.Error("unknown record type", "type", *duplicates)
			os.Exit(2)
		}
		deleted, err = admin.DeleteDuplicateGroups(ctx, rt, *dryRun)
	}
	if err != nil {
		logger.Error("delete failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("deleted %d records\n", deleted)
}
