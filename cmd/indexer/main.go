package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/corpus"
	"github.com/profile-chat/backend/internal/tokenizer"
	"github.com/profile-chat/backend/pkg/config"
	appLogger "github.com/profile-chat/backend/pkg/logger"
)

func main() {
	sourceDir := flag.String("source", "", "content directory (defaults to config corpus.sourceDir)")
	artifactDir := flag.String("out", "", "artifact directory (defaults to config corpus.artifactDir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if *sourceDir == "" {
		*sourceDir = cfg.Corpus.SourceDir
	}
	if *artifactDir == "" {
		*artifactDir = cfg.Corpus.ArtifactDir
	}

	appLogger.Info("Building corpus artifacts",
		zap.String("source_dir", *sourceDir),
		zap.String("artifact_dir", *artifactDir),
		zap.Strings("locales", cfg.Corpus.Locales),
	)

	src, err := corpus.LoadSources(*sourceDir)
	if err != nil {
		appLogger.Fatal("Failed to load sources", zap.Error(err))
	}

	tk := tokenizer.New(cfg.Subject.NameAliases)
	builder := corpus.NewBuilder(tk, cfg.Corpus.Locales)

	directory, index, err := builder.Build(src)
	if err != nil {
		appLogger.Fatal("Failed to build artifacts", zap.Error(err))
	}

	err = corpus.WriteArtifacts(*artifactDir, cfg.Corpus.AnchorFile, cfg.Corpus.IndexFile, directory, index)
	if err != nil {
		appLogger.Fatal("Failed to write artifacts", zap.Error(err))
	}

	appLogger.Info("Corpus artifacts written",
		zap.Int("anchors", len(directory.Anchors)),
		zap.Int("chunks", len(index.Chunks)),
		zap.String("hash", index.Hash),
	)
}
