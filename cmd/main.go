package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"filing-rag/internal/config"
	"filing-rag/internal/edgar"
	"filing-rag/internal/embedding"
	"filing-rag/internal/llmservice"
	"filing-rag/internal/models"
	"filing-rag/internal/rag"
	"filing-rag/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// .env is optional; flags and config take precedence
	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the YAML config file")
	userAgent := flag.String("user-agent", "", "SEC-compliant User-Agent (email or app contact)")
	ticker := flag.String("ticker", "", "Company ticker symbol")
	year := flag.Int("year", 0, "Filing year")
	quarterFlag := flag.String("quarter", "", "Filing quarter (Q1, Q2, Q3, Q4)")
	question := flag.String("question", "", "Question to answer from the filing")
	topK := flag.Int("topk", 0, "Number of passages to retrieve")
	generate := flag.Bool("generate", false, "Call the configured inference model instead of echoing the prompt")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *userAgent != "" {
		cfg.UserAgent = *userAgent
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("SEC_USER_AGENT")
	}
	if cfg.UserAgent == "" {
		log.Fatal().Msg("Please provide a SEC-compliant contact via -user-agent or SEC_USER_AGENT")
	}
	if *ticker == "" || *year == 0 || *quarterFlag == "" || *question == "" {
		log.Fatal().Msg("Please provide -ticker, -year, -quarter and -question")
	}

	quarter, err := models.ParseQuarter(*quarterFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid quarter")
	}
	k := *topK
	if k <= 0 {
		k = cfg.RAG.TopK
	}

	embedder, err := embedding.NewFromConfig(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	st, err := store.Open(cfg.Storage.DataDir, cfg.Storage.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening store")
	}

	var generator rag.Generator = rag.EchoGenerator{}
	if *generate {
		if cfg.InferLLM.Key == "" {
			cfg.InferLLM.Key = os.Getenv("LLM_API_KEY")
		}
		generator = llmservice.NewClient(&cfg.InferLLM)
	}

	client := edgar.NewClient(cfg.UserAgent)
	pipeline := rag.New(client, embedder, st, generator, cfg.RAG.ChunkSize, *cfg.RAG.ChunkOverlap)

	answer, sources, err := pipeline.Answer(context.Background(), *ticker, *year, quarter, *question, k)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}

	fmt.Println("\nANSWER\n------")
	fmt.Println(answer)

	fmt.Println("\nSOURCES\n-------")
	for i, s := range sources {
		m := s.Meta
		fmt.Printf("[%d] %s %d %s chunk=%d\n", i+1, m.Ticker, m.Year, m.Quarter, m.ChunkID)
		fmt.Printf("    url: %s\n\n", m.SourceURL)
	}
}
