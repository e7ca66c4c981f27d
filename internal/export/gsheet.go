package export

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/app"
	"github.com/chicane-league/chicane/internal/store"
)

type GSheetExporter struct {
	config        *app.Config
	store         store.LeagueStore
	scheduler     *gocron.Scheduler
	sheetsService *sheets.Service
}

func NewGSheetExporter(config *app.Config, leagueStore store.LeagueStore) (*GSheetExporter, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	for groupKey, configs := range config.GSheet {
		groupSeasonID, err := strconv.ParseInt(groupKey, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("gsheet section key must be a group season id, got %q: %w", groupKey, err)
		}

		for _, cfg := range configs {
			svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
			if err != nil {
				return nil, fmt.Errorf("failed to create sheets service: %w", err)
			}

			exporter := &GSheetExporter{
				config:        config,
				store:         leagueStore,
				scheduler:     scheduler,
				sheetsService: svc,
			}

			_, err = scheduler.Cron(cfg.Schedule).Do(func() {
				if err := exporter.Export(groupSeasonID, &cfg); err != nil {
					logger.Error.Printf("Export failed for group %d: %v", groupSeasonID, err)
				}
			})
			if err != nil {
				return nil, fmt.Errorf("failed to schedule export: %w", err)
			}
		}
	}

	scheduler.StartAsync()
	return nil, nil
}

// Export pushes the current group standings into the sheet. Rows are matched
// by user name from the users range, so the sheet owns the roster layout.
func (e *GSheetExporter) Export(groupSeasonID int64, cfg *app.GSheetConfig) error {
	readRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.UsersRange)
	resp, err := e.sheetsService.Spreadsheets.Values.Get(cfg.SheetID, readRange).Do()
	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}

	userRows := make(map[string]int)
	for i, row := range resp.Values {
		if len(row) > 0 {
			user := row[0].(string)
			userRows[user] = i + 4 // roster starts at row 4
		}
	}

	rows, err := e.store.ListStandings(groupSeasonID)
	if err != nil {
		return fmt.Errorf("failed to fetch standings: %w", err)
	}

	for _, standing := range rows {
		row, ok := userRows[standing.UserName]
		if !ok {
			continue
		}

		position := "-"
		if standing.Position != nil {
			position = strconv.Itoa(*standing.Position)
		}

		updateRange := fmt.Sprintf("%s!%s%d", cfg.SheetName, cfg.PointsColumn, row)
		_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
			&sheets.ValueRange{Values: [][]interface{}{{standing.TotalPoints, standing.EventsScored, position}}}).ValueInputOption("RAW").Do()
		if err != nil {
			return fmt.Errorf("failed to update cell: %w", err)
		}
	}

	emoji := e.config.EmojiVariants[rand.Intn(len(e.config.EmojiVariants))]
	timestamp := fmt.Sprintf("UPD: %s %s", time.Now().Format("2 January 15:04"), emoji)

	updateRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
	_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
		&sheets.ValueRange{Values: [][]interface{}{{timestamp}}}).ValueInputOption("RAW").Do()

	return err
}
