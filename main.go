package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"ofertas-bot/aggregator"
	"ofertas-bot/config"
	"ofertas-bot/db"
	"ofertas-bot/fetcher"
	"ofertas-bot/filter"
	"ofertas-bot/models"
	"ofertas-bot/parser"
	"ofertas-bot/scheduler"
	"ofertas-bot/sheets"
	"ofertas-bot/sources"
	"ofertas-bot/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env file")
	}

	// Parse command line arguments
	query := flag.String("query", "", "Search term (optional, if not provided, runs as Telegram bot)")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	outDir := flag.String("out", "", "Directory for JSON result files (overrides config)")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL (overrides config)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *spreadsheetURL != "" {
		cfg.Sheets.SpreadsheetURL = *spreadsheetURL
	}

	// If a query is provided, run in CLI mode
	if *query != "" {
		runCLIMode(*query, cfg, *credentialsPath)
		return
	}

	// Otherwise, run as Telegram bot
	runTelegramBot(cfg, *credentialsPath)
}

// runCLIMode runs a single search and writes the result artifact
func runCLIMode(term string, cfg *config.Config, credentialsPath string) {
	result, err := runSearch(term, cfg, cfg.Shopping.Country, cfg.Shopping.Language)
	if err != nil {
		log.Fatalf("Search failed: %v\n", err)
	}

	fmt.Printf("Found %d offers for '%s'\n", result.Metadata.Total, term)
	fmt.Println("---")

	if len(result.Listings) == 0 {
		fmt.Println("No offers found.")
		return
	}

	formatListingsConsole(result.Listings)

	path, err := storage.WriteResult(cfg.Output.Dir, result)
	if err != nil {
		log.Printf("Warning: Failed to write result file: %v\n", err)
	} else {
		fmt.Printf("\nResult written to %s\n", path)
	}

	// Optional spreadsheet export
	writer := newSheetsWriter(cfg.Sheets.SpreadsheetURL, credentialsPath)
	if writer != nil {
		sheetName := fmt.Sprintf("%s_%s", term, time.Now().Format("20060102_150405"))
		_, _, err := writer.CreateSheetAndWriteResult(sheetName, result)
		if err != nil {
			log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
		} else {
			fmt.Printf("Wrote %d offers to Google Sheets\n", len(result.Listings))
		}
	}
}

// runTelegramBot runs the offer search as a Telegram bot
func runTelegramBot(cfg *config.Config, credentialsPath string) {
	botToken := os.Getenv("OFERTAS_BOT_TOKEN")
	if botToken == "" {
		log.Fatalf("Error: OFERTAS_BOT_TOKEN environment variable is not set")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v\n", err)
	}

	log.Printf("Authorized on account %s\n", bot.Self.UserName)

	database, err := db.NewDB()
	if err != nil {
		log.Fatalf("Error: Failed to initialize database: %v\n", err)
	}
	defer database.Close()
	log.Println("Database initialized successfully")

	writer := newSheetsWriter(cfg.Sheets.SpreadsheetURL, credentialsPath)

	shoppingKey := os.Getenv("SERPAPI_KEY")
	if shoppingKey == "" || shoppingKey == sources.PlaceholderAPIKey {
		log.Println("SERPAPI_KEY not set; shopping source will return no results")
	}

	sched := scheduler.NewScheduler(database, bot, writer, cfg, shoppingKey)
	sched.Start()
	log.Println("Scheduler started")
	defer sched.Stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1 // This will get only new updates

	updates := bot.GetUpdatesChan(updateConfig)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		if update.Message.IsCommand() {
			switch update.Message.Command() {
			case "start":
				// Initialize user config
				if _, err := database.GetUserConfig(userID); err != nil {
					log.Printf("Warning: Failed to initialize user config for user %d: %v\n", userID, err)
				}

				welcomeMsg := tgbotapi.NewMessage(chatID,
					"Olá! Me envie o nome de um produto e eu busco as melhores ofertas para você. 🛒")
				bot.Send(welcomeMsg)
			case "help":
				helpText := "Comandos:\n" +
					"/start - Iniciar o bot\n" +
					"/help - Mostrar esta ajuda\n" +
					"/config - Mostrar suas preferências\n" +
					"/config <país> <idioma> - Alterar preferências (ex: /config br pt)\n\n" +
					"Envie o nome de um produto para buscar ofertas!"
				bot.Send(tgbotapi.NewMessage(chatID, helpText))
			case "config":
				handleConfigCommand(bot, database, chatID, userID, update.Message.CommandArguments())
			default:
				bot.Send(tgbotapi.NewMessage(chatID, "Comando desconhecido. Use /help para ver os comandos disponíveis."))
			}
			continue
		}

		term := strings.TrimSpace(update.Message.Text)
		if term == "" {
			bot.Send(tgbotapi.NewMessage(chatID, "Me envie o nome de um produto para buscar ofertas."))
			continue
		}

		// Send processing message
		processingMsg := tgbotapi.NewMessage(chatID,
			fmt.Sprintf("📝 Busca por <b>%s</b> recebida! Você receberá o resultado em instantes.", term))
		processingMsg.ParseMode = "HTML"
		sentMsg, err := bot.Send(processingMsg)
		if err != nil {
			log.Printf("Error sending processing message: %v\n", err)
			continue
		}

		// Queue the search
		search, err := database.CreateSearch(userID, sentMsg.MessageID, term)
		if err != nil {
			log.Printf("Error creating search: %v\n", err)
			errorMsg := tgbotapi.NewEditMessageText(chatID, sentMsg.MessageID,
				fmt.Sprintf("❌ Erro ao registrar a busca: %v", err))
			bot.Send(errorMsg)
			continue
		}

		log.Printf("Created search ID %d (%q) for user %d\n", search.ID, term, userID)
	}
}

// handleConfigCommand shows or updates a user's search localization
func handleConfigCommand(bot *tgbotapi.BotAPI, database *db.DB, chatID int64, userID int64, args string) {
	fields := strings.Fields(args)

	if len(fields) == 2 {
		country := strings.ToLower(fields[0])
		language := strings.ToLower(fields[1])
		if err := database.UpdateUserConfig(userID, &country, &language); err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Erro ao atualizar preferências: %v", err)))
			return
		}
	} else if len(fields) != 0 {
		bot.Send(tgbotapi.NewMessage(chatID, "Uso: /config <país> <idioma> (ex: /config br pt)"))
		return
	}

	userConfig, err := database.GetUserConfig(userID)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Erro ao carregar preferências: %v", err)))
		return
	}

	configText := fmt.Sprintf(
		"⚙️ Suas preferências:\n\n"+
			"🌎 País: %s\n"+
			"🗣 Idioma: %s\n\n"+
			"Use /config <país> <idioma> para alterar.",
		userConfig.Country, userConfig.Language)
	bot.Send(tgbotapi.NewMessage(chatID, configText))
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
			cfg = config.GetDefaultConfig()
		}
	} else {
		log.Println("Config file not found. Using default configuration.")
		cfg = config.GetDefaultConfig()
	}
	return cfg
}

// newSheetsWriter builds the optional sheets writer. Returns nil when no
// spreadsheet is configured or credentials are unavailable.
func newSheetsWriter(spreadsheetURL, credentialsPath string) *sheets.Writer {
	if spreadsheetURL == "" {
		return nil
	}

	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", spreadsheetURL)
		return nil
	}

	writer, err := sheets.NewWriter(spreadsheetID, credentialsPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return nil
	}

	log.Printf("Google Sheets writer initialized for spreadsheet: %s\n", spreadsheetID)
	return writer
}

// runSearch performs a single aggregation across all sources
func runSearch(term string, cfg *config.Config, country, language string) (models.SearchResult, error) {
	timeout := time.Duration(cfg.Marketplace.TimeoutSeconds) * time.Second

	f, err := fetcher.New(cfg.Marketplace.Fetcher, timeout)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer func() {
		if closer, ok := f.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Printf("Warning: Failed to close fetcher: %v\n", err)
			}
		}
	}()

	marketplace := sources.NewMercadoLivre(
		cfg.Marketplace.BaseURL,
		f,
		parser.NewParser(cfg.Marketplace.Selectors),
		cfg.Filters.MinPrice,
		cfg.Filters.MaxPrice,
	)

	shopping := sources.NewShopping(sources.ShoppingOptions{
		APIKey:   os.Getenv("SERPAPI_KEY"),
		Engine:   cfg.Shopping.Engine,
		Country:  country,
		Language: language,
		PageSize: cfg.Shopping.PageSize,
		Timeout:  time.Duration(cfg.Shopping.TimeoutSeconds) * time.Second,
	})

	agg := aggregator.New(
		[]sources.Source{marketplace, shopping},
		filter.NewFilter(cfg.Filters),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	return agg.Aggregate(ctx, term), nil
}

// formatListingsConsole formats listings for console output
func formatListingsConsole(listings []models.Listing) {
	for i, l := range listings {
		fmt.Printf("\n%d. %s\n", i+1, l.Title)
		fmt.Printf("   Store: %s\n", l.Store)

		fmt.Printf("   Price: %s", scheduler.FormatPrice(l.CurrentPrice))
		if l.DiscountPercent > 0 {
			fmt.Printf(" (was %s, -%d%%)", scheduler.FormatPrice(l.OriginalPrice), l.DiscountPercent)
		}
		fmt.Println()

		if l.Rating != nil {
			fmt.Printf("   Rating: %g\n", *l.Rating)
		}
		if l.Reviews != nil {
			fmt.Printf("   Reviews: %d\n", *l.Reviews)
		}

		link := l.AffiliateURL
		if link == "" {
			link = l.ProductURL
		}
		if link != "" {
			fmt.Printf("   Link: %s\n", link)
		}
	}
}
