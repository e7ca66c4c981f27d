package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chicane-league/chicane/internal/models"
)

type LeagueStore interface {
	Close() error
	ApplyMigrations(dir string) error

	GetEvent(eventID int64) (*models.Event, error)
	ListEvents() ([]models.Event, error)
	ListEventQuestions(eventID int64) ([]models.Question, error)
	GetOfficialResult(questionID int64) (*models.OfficialResult, error)
	UpsertOfficialResult(result *models.OfficialResult) error
	CountTotalQuestions(eventID int64) (int, error)
	CountResolvedQuestions(eventID int64) (int, error)

	ListEventPredictions(eventID int64) ([]ScorableRow, error)
	ListUserEventPredictions(userID, eventID int64) ([]models.Prediction, error)

	UpsertPointAward(award *models.PointAward) error
	DeleteEventAwards(eventID, groupSeasonID int64) error

	UserTotals(groupSeasonID, userID int64) (UserTotals, error)
	UpsertStanding(standing *models.Standing) error
	GetStanding(groupSeasonID, userID int64) (*models.Standing, error)
	ListStandings(groupSeasonID int64) ([]models.StandingWithUser, error)
	SetStandingPosition(groupSeasonID, userID int64, position int) error

	GetGroupSeason(id int64) (*models.GroupSeason, error)
	ActiveSeason() (string, error)
	ListGroupMembers(groupSeasonID int64) ([]models.User, error)

	ListSeasonStandingRows(season, search string) ([]SeasonStandingRow, error)
	ListUserEventPoints(userIDs []int64) ([]UserEventPointsRow, error)

	HasPointsNotification(groupSeasonID, userID int64, eventName string) (bool, error)
	CreatePointsNotification(n *models.PointsNotification) error

	ListUserScoredRows(groupSeasonID, userID int64, eventID *int64) ([]ScoredRow, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetEvent(eventID int64) (*models.Event, error) {
	var event models.Event
	query := s.Converter(`
		SELECT id, round, name, starts_at, locks_at
		FROM events
		WHERE id = ?
	`)

	err := s.DB.Get(&event, query, eventID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (s *BaseStore) ListEvents() ([]models.Event, error) {
	var events []models.Event
	err := s.DB.Select(&events, `
		SELECT id, round, name, starts_at, locks_at
		FROM events
		ORDER BY round ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *BaseStore) ListEventQuestions(eventID int64) ([]models.Question, error) {
	var questions []models.Question
	query := s.Converter(`
		SELECT id, event_id, template_id, label, category, kind, options, point_value, display_order
		FROM questions
		WHERE event_id = ?
		ORDER BY display_order, id
	`)

	err := s.DB.Select(&questions, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *BaseStore) GetOfficialResult(questionID int64) (*models.OfficialResult, error) {
	var result models.OfficialResult
	query := s.Converter(`
		SELECT question_id, answer, recorded_at
		FROM official_results
		WHERE question_id = ?
	`)

	err := s.DB.Get(&result, query, questionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get official result: %w", err)
	}
	return &result, nil
}

func (s *BaseStore) UpsertOfficialResult(result *models.OfficialResult) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO official_results (question_id, answer, recorded_at)
		VALUES (:question_id, :answer, :recorded_at)
		ON CONFLICT(question_id) DO UPDATE SET
		answer = :answer,
		recorded_at = :recorded_at
	`, result)
	if err != nil {
		return fmt.Errorf("failed to upsert official result: %w", err)
	}
	return nil
}

func (s *BaseStore) CountTotalQuestions(eventID int64) (int, error) {
	var count int
	query := s.Converter(`SELECT COUNT(*) FROM questions WHERE event_id = ?`)
	if err := s.DB.Get(&count, query, eventID); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (s *BaseStore) CountResolvedQuestions(eventID int64) (int, error) {
	var count int
	query := s.Converter(`
		SELECT COUNT(*)
		FROM official_results r
		JOIN questions q ON q.id = r.question_id
		WHERE q.event_id = ?
	`)
	if err := s.DB.Get(&count, query, eventID); err != nil {
		return 0, fmt.Errorf("failed to count resolved questions: %w", err)
	}
	return count, nil
}

// scorableScan is the flat scan target for ListEventPredictions. Question
// and template fields stay separate here and go through ResolveQuestion
// exactly once.
type scorableScan struct {
	PredictionID   int64   `db:"prediction_id"`
	UserID         int64   `db:"user_id"`
	QuestionID     int64   `db:"question_id"`
	EventID        int64   `db:"event_id"`
	Answer         string  `db:"answer"`
	OfficialAnswer string  `db:"official_answer"`
	TemplateID     *int64  `db:"template_id"`
	QLabel         *string `db:"q_label"`
	QCategory      *string `db:"q_category"`
	Kind           string  `db:"kind"`
	QPointValue    *int    `db:"q_point_value"`
	DisplayOrder   int     `db:"display_order"`
	TplLabel       *string `db:"tpl_label"`
	TplCategory    *string `db:"tpl_category"`
	TplPointValue  *int    `db:"tpl_point_value"`
}

func (r scorableScan) resolve() ScorableRow {
	q := models.Question{
		ID:           r.QuestionID,
		EventID:      r.EventID,
		TemplateID:   r.TemplateID,
		Label:        r.QLabel,
		Category:     r.QCategory,
		Kind:         r.Kind,
		PointValue:   r.QPointValue,
		DisplayOrder: r.DisplayOrder,
	}
	var tpl *models.QuestionTemplate
	if r.TemplateID != nil && r.TplLabel != nil && r.TplCategory != nil && r.TplPointValue != nil {
		tpl = &models.QuestionTemplate{
			ID:         *r.TemplateID,
			Label:      *r.TplLabel,
			Category:   *r.TplCategory,
			PointValue: *r.TplPointValue,
		}
	}
	resolved := models.ResolveQuestion(q, tpl)

	return ScorableRow{
		PredictionID:   r.PredictionID,
		UserID:         r.UserID,
		QuestionID:     r.QuestionID,
		Answer:         r.Answer,
		OfficialAnswer: r.OfficialAnswer,
		Label:          resolved.Label,
		Category:       resolved.Category,
		PointValue:     resolved.PointValue,
		DisplayOrder:   resolved.DisplayOrder,
	}
}

func (s *BaseStore) ListEventPredictions(eventID int64) ([]ScorableRow, error) {
	var scans []scorableScan
	query := s.Converter(`
		SELECT
			p.id AS prediction_id,
			p.user_id,
			p.question_id,
			q.event_id,
			p.answer,
			r.answer AS official_answer,
			q.template_id,
			q.label AS q_label,
			q.category AS q_category,
			q.kind,
			q.point_value AS q_point_value,
			q.display_order,
			t.label AS tpl_label,
			t.category AS tpl_category,
			t.point_value AS tpl_point_value
		FROM predictions p
		JOIN questions q ON q.id = p.question_id
		JOIN official_results r ON r.question_id = q.id
		LEFT JOIN question_templates t ON t.id = q.template_id
		WHERE p.event_id = ?
		ORDER BY p.user_id, q.display_order, q.id
	`)

	err := s.DB.Select(&scans, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event predictions: %w", err)
	}

	rows := make([]ScorableRow, 0, len(scans))
	for _, sc := range scans {
		rows = append(rows, sc.resolve())
	}
	return rows, nil
}

func (s *BaseStore) ListUserEventPredictions(userID, eventID int64) ([]models.Prediction, error) {
	var predictions []models.Prediction
	query := s.Converter(`
		SELECT id, user_id, event_id, question_id, answer, updated_at
		FROM predictions
		WHERE user_id = ? AND event_id = ?
		ORDER BY question_id
	`)

	err := s.DB.Select(&predictions, query, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user predictions: %w", err)
	}
	return predictions, nil
}

func (s *BaseStore) UpsertPointAward(award *models.PointAward) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO point_awards (prediction_id, group_season_id, points, scored_at)
		VALUES (:prediction_id, :group_season_id, :points, :scored_at)
		ON CONFLICT(prediction_id, group_season_id) DO UPDATE SET
		points = :points,
		scored_at = :scored_at
	`, award)
	if err != nil {
		return fmt.Errorf("failed to upsert point award: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteEventAwards(eventID, groupSeasonID int64) error {
	query := s.Converter(`
		DELETE FROM point_awards
		WHERE group_season_id = ?
		AND prediction_id IN (
			SELECT id FROM predictions WHERE event_id = ?
		)
	`)
	if _, err := s.DB.Exec(query, groupSeasonID, eventID); err != nil {
		return fmt.Errorf("failed to delete event awards: %w", err)
	}
	return nil
}

func (s *BaseStore) UserTotals(groupSeasonID, userID int64) (UserTotals, error) {
	var totals UserTotals
	query := s.Converter(`
		SELECT
			COALESCE(SUM(a.points), 0) AS total_points,
			COUNT(DISTINCT p.event_id) AS events_scored
		FROM point_awards a
		JOIN predictions p ON p.id = a.prediction_id
		WHERE a.group_season_id = ?
		AND p.user_id = ?
	`)

	err := s.DB.Get(&totals, query, groupSeasonID, userID)
	if err != nil {
		return UserTotals{}, fmt.Errorf("failed to aggregate user totals: %w", err)
	}
	return totals, nil
}

func (s *BaseStore) UpsertStanding(standing *models.Standing) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO standings (group_season_id, user_id, total_points, events_scored, position, created_at, updated_at)
		VALUES (:group_season_id, :user_id, :total_points, :events_scored, :position, :created_at, :updated_at)
		ON CONFLICT(group_season_id, user_id) DO UPDATE SET
		total_points = :total_points,
		events_scored = :events_scored,
		updated_at = :updated_at
	`, standing)
	if err != nil {
		return fmt.Errorf("failed to upsert standing: %w", err)
	}
	return nil
}

func (s *BaseStore) GetStanding(groupSeasonID, userID int64) (*models.Standing, error) {
	var standing models.Standing
	query := s.Converter(`
		SELECT group_season_id, user_id, total_points, events_scored, position, created_at, updated_at
		FROM standings
		WHERE group_season_id = ? AND user_id = ?
	`)

	err := s.DB.Get(&standing, query, groupSeasonID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standing: %w", err)
	}
	return &standing, nil
}

func (s *BaseStore) ListStandings(groupSeasonID int64) ([]models.StandingWithUser, error) {
	var standings []models.StandingWithUser
	query := s.Converter(`
		SELECT
			st.group_season_id,
			st.user_id,
			st.total_points,
			st.events_scored,
			st.position,
			st.created_at,
			st.updated_at,
			u.name AS user_name,
			u.email AS user_email
		FROM standings st
		JOIN users u ON u.id = st.user_id
		WHERE st.group_season_id = ?
		ORDER BY st.total_points DESC, st.events_scored DESC, st.created_at ASC
	`)

	err := s.DB.Select(&standings, query, groupSeasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	return standings, nil
}

func (s *BaseStore) SetStandingPosition(groupSeasonID, userID int64, position int) error {
	query := s.Converter(`
		UPDATE standings
		SET position = ?
		WHERE group_season_id = ? AND user_id = ?
	`)
	if _, err := s.DB.Exec(query, position, groupSeasonID, userID); err != nil {
		return fmt.Errorf("failed to set standing position: %w", err)
	}
	return nil
}

func (s *BaseStore) GetGroupSeason(id int64) (*models.GroupSeason, error) {
	var gs models.GroupSeason
	query := s.Converter(`
		SELECT id, group_name, season, active, created_at
		FROM group_seasons
		WHERE id = ?
	`)

	err := s.DB.Get(&gs, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group season: %w", err)
	}
	return &gs, nil
}

// ActiveSeason resolves the season callers get when they don't name one.
// Only the one designated entry point uses this.
func (s *BaseStore) ActiveSeason() (string, error) {
	var season string
	err := s.DB.Get(&season, `
		SELECT season
		FROM group_seasons
		WHERE active
		ORDER BY created_at DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve active season: %w", err)
	}
	return season, nil
}

func (s *BaseStore) ListGroupMembers(groupSeasonID int64) ([]models.User, error) {
	var users []models.User
	query := s.Converter(`
		SELECT u.id, u.name, u.email, u.created_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_season_id = ?
		ORDER BY m.joined_at ASC
	`)

	err := s.DB.Select(&users, query, groupSeasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return users, nil
}

func (s *BaseStore) HasPointsNotification(groupSeasonID, userID int64, eventName string) (bool, error) {
	var count int
	query := s.Converter(`
		SELECT COUNT(*)
		FROM points_notifications
		WHERE group_season_id = ? AND user_id = ? AND event_name = ?
	`)
	if err := s.DB.Get(&count, query, groupSeasonID, userID, eventName); err != nil {
		return false, fmt.Errorf("failed to check points notification: %w", err)
	}
	return count > 0, nil
}

func (s *BaseStore) CreatePointsNotification(n *models.PointsNotification) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO points_notifications (group_season_id, user_id, event_name, points, created_at)
		VALUES (:group_season_id, :user_id, :event_name, :points, :created_at)
		ON CONFLICT(group_season_id, user_id, event_name) DO NOTHING
	`, n)
	if err != nil {
		return fmt.Errorf("failed to create points notification: %w", err)
	}
	return nil
}

// scoredScan is the flat scan target for ListUserScoredRows, resolved the
// same way as scorableScan.
type scoredScan struct {
	EventID        int64   `db:"event_id"`
	Round          int     `db:"round"`
	EventName      string  `db:"event_name"`
	QuestionID     int64   `db:"question_id"`
	Answer         string  `db:"answer"`
	OfficialAnswer string  `db:"official_answer"`
	Points         int     `db:"points"`
	TemplateID     *int64  `db:"template_id"`
	QCategory      *string `db:"q_category"`
	TplCategory    *string `db:"tpl_category"`
}

func (sc scoredScan) category() string {
	q := models.Question{
		ID:         sc.QuestionID,
		EventID:    sc.EventID,
		TemplateID: sc.TemplateID,
		Category:   sc.QCategory,
	}
	var tpl *models.QuestionTemplate
	if sc.TemplateID != nil && sc.TplCategory != nil {
		tpl = &models.QuestionTemplate{
			ID:       *sc.TemplateID,
			Category: *sc.TplCategory,
		}
	}
	return models.ResolveQuestion(q, tpl).Category
}

func (s *BaseStore) ListUserScoredRows(groupSeasonID, userID int64, eventID *int64) ([]ScoredRow, error) {
	query := `
		SELECT
			e.id AS event_id,
			e.round,
			e.name AS event_name,
			q.id AS question_id,
			p.answer,
			r.answer AS official_answer,
			a.points,
			q.template_id,
			q.category AS q_category,
			t.category AS tpl_category
		FROM point_awards a
		JOIN predictions p ON p.id = a.prediction_id
		JOIN questions q ON q.id = p.question_id
		JOIN official_results r ON r.question_id = q.id
		JOIN events e ON e.id = p.event_id
		LEFT JOIN question_templates t ON t.id = q.template_id
		WHERE a.group_season_id = ?
		AND p.user_id = ?
	`
	args := []interface{}{groupSeasonID, userID}
	if eventID != nil {
		query += ` AND p.event_id = ?`
		args = append(args, *eventID)
	}
	query += ` ORDER BY e.round ASC, q.display_order, q.id`

	var scans []scoredScan
	err := s.DB.Select(&scans, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored rows: %w", err)
	}

	rows := make([]ScoredRow, 0, len(scans))
	for _, sc := range scans {
		rows = append(rows, ScoredRow{
			EventID:        sc.EventID,
			Round:          sc.Round,
			EventName:      sc.EventName,
			QuestionID:     sc.QuestionID,
			Category:       sc.category(),
			Answer:         sc.Answer,
			OfficialAnswer: sc.OfficialAnswer,
			Points:         sc.Points,
		})
	}
	return rows, nil
}
