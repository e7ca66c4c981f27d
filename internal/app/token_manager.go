package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chicane-league/chicane/internal/models"
)

const (
	timeFormat      = "2006-01-02 15:04:05"
	authKeyTpl      = "auth:%d:%d" // auth:${groupSeasonID}:${userID}
	lookupKeyTpl    = "lookup:%d"  // lookup:${groupSeasonID}
	chatGroupKeyTpl = "chat:"      // chat:${chatID}
	tokenPrefix     = "sk-chcn-"
)

type TokenManager struct {
	redis *redis.Client
}

func NewTokenManager(redis *redis.Client) *TokenManager {
	return &TokenManager{redis: redis}
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (tm *TokenManager) FetchOrCreateUserToken(ctx context.Context, groupSeasonID, userID int64) (*models.TokenInfo, bool, error) {
	key := fmt.Sprintf(authKeyTpl, groupSeasonID, userID)

	token, err := tm.redis.HGet(ctx, key, "token").Result()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("failed to check token: %w", err)
	}

	now := time.Now().UTC()
	isNewToken := false

	if err == redis.Nil {
		token, err = generateToken()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate token: %w", err)
		}

		pipe := tm.redis.Pipeline()
		pipe.HSet(ctx, key, map[string]interface{}{
			"token":                 token,
			"request_count":         1,
			"last_request_dttm_utc": now.Format(timeFormat),
			"created_dttm_utc":      now.Format(timeFormat),
		})

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to create token: %w", err)
		}

		isNewToken = true
	} else {
		pipe := tm.redis.Pipeline()
		pipe.HIncrBy(ctx, key, "request_count", 1)
		pipe.HSet(ctx, key, "last_request_dttm_utc", now.Format(timeFormat))

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to update token stats: %w", err)
		}
	}

	values, err := tm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get token info: %w", err)
	}

	lastReqTime, _ := time.Parse(timeFormat, values["last_request_dttm_utc"])
	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.TokenInfo{
		Token:           values["token"],
		RequestCount:    reqCount,
		LastRequestTime: lastReqTime,
		CreatedTime:     createdTime,
	}, isNewToken, nil
}

func (tm *TokenManager) SaveUserTelegramMapping(ctx context.Context, groupSeasonID int64, tgUsername string, userID int64) error {
	key := fmt.Sprintf(lookupKeyTpl, groupSeasonID)
	return tm.redis.HSet(ctx, key, tgUsername, strconv.FormatInt(userID, 10)).Err()
}

func (tm *TokenManager) FetchUserIDByTelegram(ctx context.Context, groupSeasonID int64, tgUsername string) (int64, error) {
	key := fmt.Sprintf(lookupKeyTpl, groupSeasonID)
	raw, err := tm.redis.HGet(ctx, key, tgUsername).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("no mapping found for telegram user %s in group %d", tgUsername, groupSeasonID)
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (tm *TokenManager) FetchGroupMappings(ctx context.Context, groupSeasonID int64) (map[string]string, error) {
	key := fmt.Sprintf(lookupKeyTpl, groupSeasonID)
	return tm.redis.HGetAll(ctx, key).Result()
}

func (tm *TokenManager) AssociateChatWithGroup(ctx context.Context, chatID int64, mapping *models.ChatGroupMapping) error {
	key := fmt.Sprintf("%s%d", chatGroupKeyTpl, chatID)
	return tm.redis.HSet(ctx, key, map[string]interface{}{
		"group_season_id":     mapping.GroupSeasonID,
		"name":                mapping.Name,
		"comment":             mapping.Comment,
		"associated_dttm_utc": mapping.AssociationTime.Format(timeFormat),
		"registered_by":       mapping.RegisteredBy,
	}).Err()
}

func (tm *TokenManager) FetchGroupMappingByChatID(ctx context.Context, chatID int64) (*models.ChatGroupMapping, error) {
	key := fmt.Sprintf("%s%d", chatGroupKeyTpl, chatID)

	values, err := tm.redis.HGetAll(ctx, key).Result()
	// An unbound chat is a normal state, not an error; callers decide how
	// to prompt for /bind.
	if err == redis.Nil || (err == nil && len(values) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat group mapping for chat %d", chatID)
	}

	associationTime, _ := time.Parse(timeFormat, values["associated_dttm_utc"])
	registeredBy, _ := strconv.ParseInt(values["registered_by"], 10, 64)
	groupSeasonID, _ := strconv.ParseInt(values["group_season_id"], 10, 64)

	return &models.ChatGroupMapping{
		GroupSeasonID:   groupSeasonID,
		Name:            values["name"],
		Comment:         values["comment"],
		AssociationTime: associationTime,
		RegisteredBy:    registeredBy,
	}, nil
}

func (tm *TokenManager) Close() error {
	if tm.redis != nil {
		return tm.redis.Close()
	}
	return nil
}

func (tm *TokenManager) FetchAllChatMappings(ctx context.Context) (map[string]*models.ChatGroupMapping, error) {
	// FIXME: scans are expensive
	pattern := fmt.Sprintf("%s*", chatGroupKeyTpl)

	iter := tm.redis.Scan(ctx, 0, pattern, 0).Iterator()

	mappings := make(map[string]*models.ChatGroupMapping)

	for iter.Next(ctx) {
		key := iter.Val()
		chatID := strings.TrimPrefix(key, chatGroupKeyTpl)

		values, err := tm.redis.HGetAll(ctx, key).Result()
		if err != nil {
			continue
		}

		associationTime, _ := time.Parse(timeFormat, values["associated_dttm_utc"])
		registeredBy, _ := strconv.ParseInt(values["registered_by"], 10, 64)
		groupSeasonID, _ := strconv.ParseInt(values["group_season_id"], 10, 64)

		mappings[chatID] = &models.ChatGroupMapping{
			GroupSeasonID:   groupSeasonID,
			Name:            values["name"],
			Comment:         values["comment"],
			AssociationTime: associationTime,
			RegisteredBy:    registeredBy,
		}
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch chat mappings: %w", err)
	}

	return mappings, nil

}
