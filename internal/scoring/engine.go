// Package scoring turns (prediction, official result) pairs into point
// awards. Scoring is deterministic and idempotent: re-running an event for
// a group converges to the same award rows.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/metrics"
	"github.com/chicane-league/chicane/internal/models"
	"github.com/chicane-league/chicane/internal/standings"
	"github.com/chicane-league/chicane/internal/store"
)

// QuestionDetail is the per-question audit line of a scoring run. It is
// reproducible from stored awards, predictions and official results alone.
type QuestionDetail struct {
	QuestionID int64  `json:"question_id"`
	Label      string `json:"label"`
	Category   string `json:"category"`
	Submitted  string `json:"submitted"`
	Official   string `json:"official"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
}

// Result summarizes one user's outcome for one scored event in one group.
type Result struct {
	UserID           int64            `json:"user_id"`
	EventPoints      int              `json:"event_points"`
	CorrectCount     int              `json:"correct_count"`
	TotalPredictions int              `json:"total_predictions"`
	Details          []QuestionDetail `json:"details"`
}

type Engine struct {
	store     store.LeagueStore
	standings *standings.Aggregator
	notifier  Notifier
}

func NewEngine(s store.LeagueStore, agg *standings.Aggregator, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = &LogNotifier{}
	}
	return &Engine{
		store:     s,
		standings: agg,
		notifier:  notifier,
	}
}

// ScoreEvent scores every submitted prediction of an event for one group.
// Hard preconditions: the event and group exist, and every question of the
// event has an official result. Awards are upserted keyed by
// (prediction, group), so a rerun overwrites every prior award, including
// resetting to zero answers that stopped being correct after a result fix.
func (e *Engine) ScoreEvent(ctx context.Context, eventID, groupSeasonID int64) ([]Result, error) {
	event, err := e.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.NewNotFoundError("event", eventID)
	}

	gs, err := e.store.GetGroupSeason(groupSeasonID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, models.NewNotFoundError("group season", groupSeasonID)
	}

	total, err := e.store.CountTotalQuestions(eventID)
	if err != nil {
		return nil, err
	}
	resolved, err := e.store.CountResolvedQuestions(eventID)
	if err != nil {
		return nil, err
	}
	if resolved < total {
		return nil, &models.IncompleteResultsError{
			EventID:  eventID,
			Resolved: resolved,
			Total:    total,
		}
	}

	rows, err := e.store.ListEventPredictions(eventID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64][]store.ScorableRow)
	userOrder := make([]int64, 0)
	for _, row := range rows {
		if _, ok := byUser[row.UserID]; !ok {
			userOrder = append(userOrder, row.UserID)
		}
		byUser[row.UserID] = append(byUser[row.UserID], row)
	}

	now := time.Now().Unix()
	results := make([]Result, 0, len(userOrder))

	for _, userID := range userOrder {
		result, err := e.scoreUser(ctx, event, gs, byUser[userID], userID, now)
		if err != nil {
			// Per-user upserts already applied stay valid; a rerun
			// converges, so surface the error and stop.
			return results, fmt.Errorf("failed to score user %d: %w", userID, err)
		}
		results = append(results, result)
	}

	logger.Info.Printf(
		"Scored event %d (%s) for group %d: %d users",
		eventID, event.Name, groupSeasonID, len(results),
	)

	return results, nil
}

func (e *Engine) scoreUser(
	ctx context.Context,
	event *models.Event,
	gs *models.GroupSeason,
	rows []store.ScorableRow,
	userID int64,
	now int64,
) (Result, error) {
	result := Result{
		UserID:           userID,
		TotalPredictions: len(rows),
		Details:          make([]QuestionDetail, 0, len(rows)),
	}

	for _, row := range rows {
		correct := row.Answer == row.OfficialAnswer
		points := 0
		if correct {
			points = row.PointValue
			result.CorrectCount++
		}
		result.EventPoints += points

		award := &models.PointAward{
			PredictionID:  row.PredictionID,
			GroupSeasonID: gs.ID,
			Points:        points,
			ScoredAt:      now,
		}
		if err := e.store.UpsertPointAward(award); err != nil {
			return result, err
		}

		result.Details = append(result.Details, QuestionDetail{
			QuestionID: row.QuestionID,
			Label:      row.Label,
			Category:   row.Category,
			Submitted:  row.Answer,
			Official:   row.OfficialAnswer,
			Correct:    correct,
			Points:     points,
		})
	}

	if _, err := e.standings.RecomputeStanding(gs.ID, userID); err != nil {
		return result, err
	}

	if result.EventPoints > 0 {
		if err := e.notifyPointsEarned(ctx, gs.ID, userID, event.Name, result.EventPoints); err != nil {
			// Notification delivery must not fail the scoring run.
			logger.Error.Printf("Failed to emit points notification for user %d: %v", userID, err)
		}
	}

	return result, nil
}

// notifyPointsEarned emits a points-earned notification once per
// (group, user, event name). The persisted record is the dedupe guard
// against duplicate emission on re-scoring.
func (e *Engine) notifyPointsEarned(ctx context.Context, groupSeasonID, userID int64, eventName string, points int) error {
	seen, err := e.store.HasPointsNotification(groupSeasonID, userID, eventName)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	record := &models.PointsNotification{
		GroupSeasonID: groupSeasonID,
		UserID:        userID,
		EventName:     eventName,
		Points:        points,
		CreatedAt:     time.Now().Unix(),
	}
	if err := e.store.CreatePointsNotification(record); err != nil {
		return err
	}

	if err := e.notifier.EmitPointsEarned(ctx, groupSeasonID, userID, eventName, points); err != nil {
		return err
	}

	metrics.NotificationsTotal.Inc()
	return nil
}

// RecalculateEventScoring clears all awards for the event/group pair, then
// scores from scratch. Used when an official result is corrected after an
// initial scoring pass.
func (e *Engine) RecalculateEventScoring(ctx context.Context, eventID, groupSeasonID int64) ([]Result, error) {
	event, err := e.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.NewNotFoundError("event", eventID)
	}

	gs, err := e.store.GetGroupSeason(groupSeasonID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, models.NewNotFoundError("group season", groupSeasonID)
	}

	if err := e.store.DeleteEventAwards(eventID, groupSeasonID); err != nil {
		return nil, err
	}

	logger.Debug.Printf("Cleared awards for event %d group %d, rescoring", eventID, groupSeasonID)

	return e.ScoreEvent(ctx, eventID, groupSeasonID)
}
