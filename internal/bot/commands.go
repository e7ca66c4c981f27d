package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/models"
	"github.com/chicane-league/chicane/internal/scoring"
)

const (
	playerHelp = `Доступные команды:
/token - Получить токен для доступа к API
/standings - Таблица твоей группы
/help - Показать это сообщение`

	adminHelp = `Доступные команды:
/token - Получить токен для доступа к API
/standings - Таблица группы, привязанной к чату
/bind <group_id> <name> - Привязать этот чат к группе
/result <question_id> <answer> - Записать официальный результат
/score <event_id> <group_id> - Посчитать очки за этап
/rescore <event_id> <group_id> - Пересчитать очки за этап заново
/events - Список этапов сезона
/help - Показать это сообщение

Примеры:
/bind 3 "Paddock Club"
/result 42 VER
/score 7 3
/rescore 7 3`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routePlayerCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":     b.handleStart,
		"token":     b.handleToken,
		"standings": b.handleStandings,
		"help":      b.handleHelp,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"bind":    b.handleBind,
		"result":  b.handleResult,
		"score":   b.handleScore,
		"rescore": b.handleRescore,
		"events":  b.handleEvents,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routePlayerCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = playerHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Используйте команды для взаимодействия с ботом. Отправьте /help для списка команд.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Привет! Я считаю очки лиги прогнозов.\n\n"
	if b.admins[msg.From.ID] {
		text += "Ты администратор лиги. Используй /help для списка команд."
	} else {
		text += "Используй /token чтобы получить токен, и /standings чтобы посмотреть таблицу."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

// chatGroup resolves the group this chat was bound to via /bind.
func (b *Bot) chatGroup(ctx context.Context, chatID int64) (*models.ChatGroupMapping, error) {
	mapping, err := b.tokens.FetchGroupMappingByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска привязки чата: %v", err)
	}
	if mapping == nil {
		return nil, fmt.Errorf("этот чат не привязан к группе, попроси админа сделать /bind")
	}
	return mapping, nil
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	ctx := context.Background()

	mapping, err := b.chatGroup(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}

	userID, err := b.tokens.FetchUserIDByTelegram(ctx, mapping.GroupSeasonID, msg.From.UserName)
	if err != nil {
		return fmt.Errorf("не нашёл тебя в группе %s, попроси админа добавить", mapping.Name)
	}

	info, created, err := b.tokens.FetchOrCreateUserToken(ctx, mapping.GroupSeasonID, userID)
	if err != nil {
		return fmt.Errorf("ошибка выдачи токена: %v", err)
	}

	action := "Твой токен"
	if created {
		action = "Выдал новый токен"
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("%s:\n`%s`", action, info.Token))
	reply.ParseMode = tgbotapi.ModeMarkdown
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleStandings(msg *tgbotapi.Message) error {
	ctx := context.Background()

	mapping, err := b.chatGroup(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}

	rows, err := b.aggregator.GetTopStandings(mapping.GroupSeasonID, 10)
	if err != nil {
		return fmt.Errorf("ошибка получения таблицы: %v", err)
	}

	if len(rows) == 0 {
		return b.sendMessage(msg.Chat.ID, "В таблице пока пусто, ждём первого этапа")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Таблица группы %s:\n\n", mapping.Name))
	for _, row := range rows {
		position := 0
		if row.Position != nil {
			position = *row.Position
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %d очков (этапов: %d)\n",
			position,
			row.UserName,
			row.TotalPoints,
			row.EventsScored,
		))
	}

	return b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) handleBind(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return b.sendMessage(msg.Chat.ID, "Использование:\n"+
			"/bind <group_id> <name> - Привязать этот чат к группе")
	}

	groupSeasonID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный id группы: %v", err)
	}

	group, err := b.store.GetGroupSeason(groupSeasonID)
	if err != nil {
		return fmt.Errorf("ошибка проверки группы: %v", err)
	}
	if group == nil {
		return fmt.Errorf("группа %d не найдена", groupSeasonID)
	}

	name := strings.Trim(strings.Join(args[1:], " "), `"`)

	mapping := &models.ChatGroupMapping{
		GroupSeasonID:   groupSeasonID,
		Name:            name,
		AssociationTime: time.Now().UTC(),
		RegisteredBy:    msg.From.ID,
	}

	if err := b.tokens.AssociateChatWithGroup(context.Background(), msg.Chat.ID, mapping); err != nil {
		return fmt.Errorf("ошибка сохранения привязки: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Чат привязан к группе %s (%s, сезон %s)",
		name, group.GroupName, group.Season))
}

func (b *Bot) handleResult(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return b.sendMessage(msg.Chat.ID, "Использование:\n"+
			"/result <question_id> <answer> - Записать официальный результат")
	}

	questionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный id вопроса: %v", err)
	}
	answer := strings.Join(args[1:], " ")

	existing, err := b.store.GetOfficialResult(questionID)
	if err != nil {
		return fmt.Errorf("ошибка проверки результата для вопроса %d: %v", questionID, err)
	}

	result := &models.OfficialResult{
		QuestionID: questionID,
		Answer:     answer,
		RecordedAt: time.Now().Unix(),
	}
	if err := b.store.UpsertOfficialResult(result); err != nil {
		return fmt.Errorf("ошибка сохранения: %v", err)
	}

	action := "записан"
	if existing != nil {
		action = "обновлён"
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Результат вопроса %d %s: %s\n"+
		"Не забудь /score после того как закрыты все вопросы этапа",
		questionID, action, answer))
}

func (b *Bot) handleScore(msg *tgbotapi.Message) error {
	return b.runScoring(msg, false)
}

func (b *Bot) handleRescore(msg *tgbotapi.Message) error {
	return b.runScoring(msg, true)
}

func (b *Bot) runScoring(msg *tgbotapi.Message, rescore bool) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		usage := "/score <event_id> <group_id>"
		if rescore {
			usage = "/rescore <event_id> <group_id>"
		}
		return b.sendMessage(msg.Chat.ID, "Использование:\n"+usage)
	}

	eventID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный id этапа: %v", err)
	}
	groupSeasonID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный id группы: %v", err)
	}

	ctx := context.Background()

	var results []scoring.Result
	if rescore {
		results, err = b.engine.RecalculateEventScoring(ctx, eventID, groupSeasonID)
		if err != nil {
			return fmt.Errorf("ошибка пересчёта: %v", err)
		}
	} else {
		results, err = b.engine.ScoreEvent(ctx, eventID, groupSeasonID)
		if err != nil {
			return fmt.Errorf("ошибка подсчёта: %v", err)
		}
	}

	if len(results) == 0 {
		return b.sendMessage(msg.Chat.ID, "Прогнозов на этот этап в группе нет")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 Этап %d посчитан, участников: %d\n\n", eventID, len(results)))
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("👤 %d: +%d очков\n", r.UserID, r.EventPoints))
	}

	return b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) handleEvents(msg *tgbotapi.Message) error {
	events, err := b.store.ListEvents()
	if err != nil {
		return fmt.Errorf("ошибка получения списка этапов: %v", err)
	}

	if len(events) == 0 {
		return b.sendMessage(msg.Chat.ID, "Этапы не найдены")
	}

	var sb strings.Builder
	sb.WriteString("Этапы сезона:\n\n")
	for _, event := range events {
		starts := time.Unix(event.StartsAt, 0)
		sb.WriteString(fmt.Sprintf("🏎 R%02d %s (id %d)\n"+
			"📅 %s UTC\n\n",
			event.Round,
			event.Name,
			event.ID,
			starts.UTC().Format("2006-Jan-02 Mon 15:04"),
		))
	}

	return b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
