package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"ofertas-bot/aggregator"
	"ofertas-bot/config"
	"ofertas-bot/db"
	"ofertas-bot/fetcher"
	"ofertas-bot/filter"
	"ofertas-bot/models"
	"ofertas-bot/parser"
	"ofertas-bot/sheets"
	srcs "ofertas-bot/sources"
	"ofertas-bot/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const searchTimeout = 2 * time.Minute

// Scheduler processes queued searches from the database
type Scheduler struct {
	db          *db.DB
	bot         *tgbotapi.BotAPI
	writer      *sheets.Writer // nil when sheets export is disabled
	cfg         *config.Config
	shoppingKey string
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewScheduler creates a new scheduler (fetchers are created on-demand)
func NewScheduler(database *db.DB, bot *tgbotapi.BotAPI, writer *sheets.Writer, cfg *config.Config, shoppingKey string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		db:          database,
		bot:         bot,
		writer:      writer,
		cfg:         cfg,
		shoppingKey: shoppingKey,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
	log.Println("Scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	ticker := time.NewTicker(5 * time.Second) // Check every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.processNextSearch()
		}
	}
}

// processNextSearch processes the next search with status 'created'
func (s *Scheduler) processNextSearch() {
	search, err := s.db.GetNextCreatedSearch()
	if err != nil {
		log.Printf("Error getting next search: %v\n", err)
		return
	}

	if search == nil {
		// No searches to process
		return
	}

	log.Printf("Processing search ID %d (%q) for user %d\n", search.ID, search.Term, search.UserID)

	if err := s.db.UpdateSearchStatus(search.ID, db.StatusInProgress); err != nil {
		log.Printf("Error updating search status to in_progress: %v\n", err)
		return
	}

	s.sendStatusUpdate(search.TelegramMessageID, search.UserID,
		fmt.Sprintf("🔍 Buscando ofertas para <b>%s</b>...", search.Term))

	userConfig, err := s.db.GetUserConfig(search.UserID)
	if err != nil {
		log.Printf("Error getting user config: %v\n", err)
		s.handleSearchError(search, err)
		return
	}

	result, err := s.runSearch(search.Term, userConfig)
	if err != nil {
		log.Printf("Error running search: %v\n", err)
		s.handleSearchError(search, err)
		return
	}

	if err := s.db.UpdateSearchTotal(search.ID, result.Metadata.Total); err != nil {
		log.Printf("Warning: Failed to update search total: %v\n", err)
	}

	// Send ranked summary as a reply
	s.sendStatusUpdate(search.TelegramMessageID, search.UserID, formatTopListings(result))

	// Attach the full result as a JSON document
	s.sendResultDocument(search, result)

	// Optional spreadsheet export
	if s.writer != nil {
		sheetName := fmt.Sprintf("%s_%s", search.Term, time.Now().Format("20060102_150405"))
		createdName, sheetID, err := s.writer.CreateSheetAndWriteResult(sheetName, result)
		if err != nil {
			log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
		} else {
			if err := s.db.UpdateSearchSheetName(search.ID, createdName); err != nil {
				log.Printf("Warning: Failed to update sheet name: %v\n", err)
			}
			s.sendStatusUpdate(search.TelegramMessageID, search.UserID,
				fmt.Sprintf("📊 Planilha: %s", s.writer.SheetURL(sheetID)))
		}
	}

	if err := s.db.UpdateSearchStatus(search.ID, db.StatusDone); err != nil {
		log.Printf("Error updating search status to done: %v\n", err)
	}
}

// runSearch builds the sources for a single search and aggregates them
func (s *Scheduler) runSearch(term string, userConfig *db.UserConfig) (models.SearchResult, error) {
	timeout := time.Duration(s.cfg.Marketplace.TimeoutSeconds) * time.Second

	f, err := fetcher.New(s.cfg.Marketplace.Fetcher, timeout)
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

	marketplace := srcs.NewMercadoLivre(
		s.cfg.Marketplace.BaseURL,
		f,
		parser.NewParser(s.cfg.Marketplace.Selectors),
		s.cfg.Filters.MinPrice,
		s.cfg.Filters.MaxPrice,
	)

	shopping := srcs.NewShopping(srcs.ShoppingOptions{
		APIKey:   s.shoppingKey,
		Engine:   s.cfg.Shopping.Engine,
		Country:  userConfig.Country,
		Language: userConfig.Language,
		PageSize: s.cfg.Shopping.PageSize,
		Timeout:  time.Duration(s.cfg.Shopping.TimeoutSeconds) * time.Second,
	})

	agg := aggregator.New(
		[]srcs.Source{marketplace, shopping},
		filter.NewFilter(s.cfg.Filters),
	)

	ctx, cancel := context.WithTimeout(s.ctx, searchTimeout)
	defer cancel()

	return agg.Aggregate(ctx, term), nil
}

// sendResultDocument sends the full result as a JSON attachment
func (s *Scheduler) sendResultDocument(search *db.Search, result models.SearchResult) {
	data, err := storage.Encode(result)
	if err != nil {
		log.Printf("Warning: Failed to encode result document: %v\n", err)
		return
	}

	doc := tgbotapi.NewDocument(search.UserID, tgbotapi.FileBytes{
		Name:  storage.FileName(search.Term),
		Bytes: data,
	})
	doc.ReplyToMessageID = search.TelegramMessageID
	doc.Caption = fmt.Sprintf("📎 %d ofertas para '%s'", result.Metadata.Total, search.Term)
	if _, err := s.bot.Send(doc); err != nil {
		log.Printf("Error sending result document: %v\n", err)
	}
}

// handleSearchError handles errors during search processing
func (s *Scheduler) handleSearchError(search *db.Search, err error) {
	if updateErr := s.db.UpdateSearchError(search.ID, err.Error()); updateErr != nil {
		log.Printf("Error updating search status to failed: %v\n", updateErr)
	}

	errorMsg := fmt.Sprintf("❌ Erro ao processar a busca: %v", err)
	s.sendStatusUpdate(search.TelegramMessageID, search.UserID, errorMsg)
}

// sendStatusUpdate sends a status update message to Telegram
func (s *Scheduler) sendStatusUpdate(messageID int, userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyToMessageID = messageID
	msg.ParseMode = "HTML"
	_, err := s.bot.Send(msg)
	if err != nil {
		log.Printf("Error sending status update: %v\n", err)
	}
}

// formatTopListings renders the top listings of a result for Telegram
func formatTopListings(result models.SearchResult) string {
	var sb strings.Builder

	if len(result.Listings) == 0 {
		sb.WriteString(fmt.Sprintf("Nenhuma oferta encontrada para '%s'.", result.Metadata.QueryTerm))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("🏆 Top ofertas para '%s' (%d encontradas):\n\n",
		result.Metadata.QueryTerm, result.Metadata.Total))

	top := result.Listings
	if len(top) > 5 {
		top = top[:5]
	}

	for i, l := range top {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, l.Title))
		sb.WriteString(fmt.Sprintf("   💰 %s", FormatPrice(l.CurrentPrice)))
		if l.DiscountPercent > 0 {
			sb.WriteString(fmt.Sprintf(" (de %s, -%d%%)", FormatPrice(l.OriginalPrice), l.DiscountPercent))
		}
		sb.WriteString("\n")

		if l.Rating != nil {
			sb.WriteString(fmt.Sprintf("   ⭐ %g", *l.Rating))
			if l.Reviews != nil {
				sb.WriteString(fmt.Sprintf(" (%d avaliações)", *l.Reviews))
			}
			sb.WriteString("\n")
		}

		sb.WriteString(fmt.Sprintf("   🏪 %s\n", l.Store))

		link := l.AffiliateURL
		if link == "" {
			link = l.ProductURL
		}
		if link != "" {
			sb.WriteString(fmt.Sprintf("   🔗 %s\n", link))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatPrice renders a price in Brazilian format: R$ 1.299,90
func FormatPrice(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteString(".")
		}
		sb.WriteRune(r)
	}
	return fmt.Sprintf("R$ %s,%s", sb.String(), decPart)
}
