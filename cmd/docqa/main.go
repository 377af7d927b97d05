// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docqa"
	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/core"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docqa",
		Usage: "Ask questions against your own documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload a document and wait for it to be ingested",
				Action:    uploadCommand,
				ArgsUsage: "FILE",
				Flags:     append(serviceFlags(), userFlag()),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about your documents",
				Action:    askCommand,
				ArgsUsage: "QUESTION",
				Flags:     append(serviceFlags(), userFlag()),
			},
			{
				Name:   "documents",
				Usage:  "List your documents and their ingestion status",
				Action: documentsCommand,
				Flags:  append(serviceFlags(), userFlag()),
			},
			{
				Name:   "history",
				Usage:  "Show your most recent questions and answers",
				Action: historyCommand,
				Flags: append(serviceFlags(), userFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of exchanges to show",
						Value: 10,
					}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a document, its stored payload and its vectors",
				Action:    deleteCommand,
				ArgsUsage: "DOCUMENT_ID",
				Flags:     append(serviceFlags(), userFlag()),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// serviceFlags are shared by every command that opens the service.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Path to the data directory",
			Value:   "docqa-data",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: fmt.Sprintf("AI provider kind (%s)", kindList()),
			Value: string(ai.KindOpenAI),
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "AI service host URL for embeddings and generation",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "generation-model",
			Usage: "Generation model name",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the AI service",
			EnvVars: []string{"DOCQA_API_KEY"},
		},
	}
}

func kindList() string {
	kinds := ai.Kinds()
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}

func userFlag() cli.Flag {
	return &cli.Uint64Flag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User ID owning the documents",
		Required: true,
	}
}

// openService builds a service from the command's flags.
func openService(c *cli.Context) (*docqa.Service, error) {
	opts := []ai.ConfigOption{ai.WithKind(ai.Kind(c.String("provider")))}
	if host := c.String("host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("generation-model"); model != "" {
		opts = append(opts, ai.WithGenerationModel(model))
	}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	return docqa.NewService(c.String("data"), docqa.WithAIConfig(ai.NewConfig(opts...)))
}

func uploadCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	ctx := context.Background()
	userID := core.UserID(c.Uint64("user"))

	doc, err := service.Upload(ctx, userID, filepath.Base(path), f)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded document %d (%s), waiting for ingestion...\n", doc.Id, doc.Filename)
	service.Wait()

	doc, err = service.Document(ctx, userID, doc.Id)
	if err != nil {
		return err
	}

	fmt.Printf("document %d: %s\n", doc.Id, doc.Status)
	if doc.Status == core.StatusFailed {
		return fmt.Errorf("ingestion failed: %s", doc.ErrorMessage)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	answer, err := service.Ask(context.Background(), core.UserID(c.Uint64("user")), c.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}

func documentsCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	docs, err := service.Documents(context.Background(), core.UserID(c.Uint64("user")))
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	for _, doc := range docs {
		line := fmt.Sprintf("%d\t%s\t%s\t%s", doc.Id, doc.Status, doc.CreatedAt.Format("2006-01-02 15:04"), doc.Filename)
		if doc.Status == core.StatusFailed {
			line += "\t" + doc.ErrorMessage
		}
		fmt.Println(line)
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	records, err := service.History(context.Background(), core.UserID(c.Uint64("user")), c.Int("limit"))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no history")
		return nil
	}

	for _, record := range records {
		fmt.Printf("[%s]\nQ: %s\nA: %s\n\n", record.AskedAt.Format("2006-01-02 15:04"), record.Question, record.Answer)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document ID argument")
	}

	var documentID core.ID
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &documentID); err != nil {
		return fmt.Errorf("invalid document ID %q", c.Args().First())
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	if err := service.DeleteDocument(context.Background(), core.UserID(c.Uint64("user")), documentID); err != nil {
		return err
	}

	fmt.Printf("deleted document %d\n", documentID)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
