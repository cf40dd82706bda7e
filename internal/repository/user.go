package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webgo/internal/domain/game"
	"webgo/internal/domain/user"
	apperrors "webgo/internal/errors"
)

func (r *MatchRepository) GetUser(ctx context.Context, id string) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var found user.User
	err := r.mongo.Collection(collectionUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		r.log.Errorw("failed to load user", "user_id", id, "error", err)
		return user.User{}, err
	}
	return found, nil
}

func (r *MatchRepository) GetBotUser(ctx context.Context, difficulty string) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"is_bot": true, "bot_difficulty": difficulty}

	var found user.User
	err := r.mongo.Collection(collectionUsers).FindOne(ctx, filter).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		r.log.Errorw("failed to load bot user", "difficulty", difficulty, "error", err)
		return user.User{}, err
	}
	return found, nil
}

func (r *MatchRepository) SaveUserRating(ctx context.Context, id string, rating int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"rating": rating, "updated_at": time.Now()}}
	res, err := r.mongo.Collection(collectionUsers).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.log.Errorw("failed to save rating", "user_id", id, "error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *MatchRepository) RecordUserResult(ctx context.Context, id string, result string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var field string
	switch result {
	case game.ResultWin:
		field = "statistic.wins"
	case game.ResultLoss:
		field = "statistic.losses"
	case game.ResultDraw:
		field = "statistic.draws"
	default:
		return fmt.Errorf("unknown result %q", result)
	}

	update := bson.M{"$inc": bson.M{field: 1}, "$set": bson.M{"updated_at": time.Now()}}
	res, err := r.mongo.Collection(collectionUsers).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.log.Errorw("failed to record result", "user_id", id, "error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *MatchRepository) RecordRatingChange(ctx context.Context, rc game.RatingChange) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if rc.ID == "" {
		rc.ID = uuid.New().String()
	}
	if _, err := r.mongo.Collection(collectionRatingChanges).InsertOne(ctx, rc); err != nil {
		r.log.Errorw("failed to record rating change", "user_id", rc.UserID, "error", err)
		return err
	}
	return nil
}

// EnsureBotUsers upserts the built-in bot accounts at startup so bot matches
// always have an opponent to seat.
func (r *MatchRepository) EnsureBotUsers(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	bots := []user.User{
		{ID: "bot-easy", Username: "Pebble", Rating: 900, IsBot: true, BotDifficulty: "easy"},
		{ID: "bot-medium", Username: "Riverstone", Rating: 1400, IsBot: true, BotDifficulty: "medium"},
		{ID: "bot-hard", Username: "Tetsuki", Rating: 1900, IsBot: true, BotDifficulty: "hard"},
	}

	collection := r.mongo.Collection(collectionUsers)
	now := time.Now()
	for _, b := range bots {
		filter := bson.M{"_id": b.ID}
		update := bson.M{
			"$setOnInsert": bson.M{
				"username":       b.Username,
				"rating":         b.Rating,
				"is_bot":         true,
				"bot_difficulty": b.BotDifficulty,
				"created_at":     now,
				"updated_at":     now,
			},
		}
		opts := options.Update().SetUpsert(true)
		if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
			r.log.Errorw("failed to seed bot user", "bot", b.ID, "error", err)
			return err
		}
	}
	return nil
}
