package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/identity"
	"github.com/joseph-ayodele/datasheet-miner/internal/store"
)

func main() {
	var (
		recordType   = flag.String("type", "", "record type to query (required)")
		id           = flag.String("id", "", "fetch one record by product id")
		manufacturer = flag.String("manufacturer", "", "compute the id for manufacturer + part number")
		partNumber   = flag.String("part", "", "part number, used with -manufacturer")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rt, ok := constants.Canonicalize(*recordType)
	if !ok {
		logger.Error("unknown record type", "type", *recordType, "known", constants.AsStringSlice())
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

	switch {
	case *id != "":
		printRecord(ctx, engine, rt, *id, logger)
	case *manufacturer != "" && *partNumber != "":
		key := identity.Normalize(*manufacturer) + ":" + identity.Normalize(*partNumber)
		printRecord(ctx, engine, rt, identity.NewID(key).String(), logger)
	default:
		records, err := engine.ListByType(ctx, rt)
		if err != nil {
			logger.Error("list records", "type", rt, "error", err)
			os.Exit(1)
		}
		printJSON(records)
		fmt.Fprintf(os.Stderr, "%d %s records\n", len(records), rt)
	}
}

func printRecord(ctx context.Context, engine *store.Engine, rt constants.RecordType, id string, logger *slog.Logger) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		logger.Error("invalid product id", "id", id, "error", err)
		os.Exit(2)
	}
	rec, err := engine.Read(ctx, parsed, rt)
	if err != nil {
		logger.Error("read record", "id", id, "error", err)
		os.Exit(1)
	}
	if rec == nil {
		fmt.Fprintln(os.Stderr, "not found")
		os.Exit(1)
	}
	printJSON(rec)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
