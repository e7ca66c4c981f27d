package scoring

import (
	"context"

	"github.com/shrimpsizemoose/trekker/logger"
)

// Notifier receives points-earned notifications. Delivery is
// fire-and-forget from the engine's perspective; the engine only guards
// against duplicate emission via its own notification records.
type Notifier interface {
	EmitPointsEarned(ctx context.Context, groupSeasonID, userID int64, eventName string, points int) error
}

// LogNotifier is the default sink: it writes the notification to the log.
// The bot and exporter are the user-facing delivery paths.
type LogNotifier struct{}

func (n *LogNotifier) EmitPointsEarned(_ context.Context, groupSeasonID, userID int64, eventName string, points int) error {
	logger.Info.Printf(
		"Points earned: group=%d user=%d event=%q points=%d",
		groupSeasonID, userID, eventName, points,
	)
	return nil
}
