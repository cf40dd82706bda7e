package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"webgo/internal/bootstrap"
	"webgo/internal/domain/game"
	apperrors "webgo/internal/errors"
)

const (
	collectionGames         = "games"
	collectionMoves         = "moves"
	collectionUsers         = "users"
	collectionRatingChanges = "rating_changes"

	queryTimeout = 5 * time.Second
)

// MatchRepository persists matches and moves in mongo and keeps the
// short-lived score-acceptance sets in redis.
type MatchRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewMatchRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redisClient *redis.Client, mongoDB *mongo.Database) *MatchRepository {
	return &MatchRepository{
		cfg:   cfg,
		log:   log,
		redis: redisClient,
		mongo: mongoDB,
	}
}

func (r *MatchRepository) GetMatchByID(ctx context.Context, id string) (game.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "deleted": bson.M{"$ne": true}}

	var found game.Match
	err := r.mongo.Collection(collectionGames).FindOne(ctx, filter).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Match{}, apperrors.ErrGameNotFound
	}
	if err != nil {
		r.log.Errorw("failed to load match", "match_id", id, "error", err)
		return game.Match{}, err
	}
	return found, nil
}

func (r *MatchRepository) GetMatchByInvitationCode(ctx context.Context, code string) (game.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"invitation_code": code, "deleted": bson.M{"$ne": true}}

	var found game.Match
	err := r.mongo.Collection(collectionGames).FindOne(ctx, filter).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Match{}, apperrors.ErrGameNotFound
	}
	if err != nil {
		r.log.Errorw("failed to load match by invitation code", "error", err)
		return game.Match{}, err
	}
	return found, nil
}

func (r *MatchRepository) PutMatch(ctx context.Context, m game.Match) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.mongo.Collection(collectionGames).InsertOne(ctx, m); err != nil {
		r.log.Errorw("failed to insert match", "match_id", m.ID, "error", err)
		return err
	}
	return nil
}

// UpdateMatchVersioned replaces the match document only when the stored
// version still equals expectedVersion. The filter makes the compare and the
// swap a single document-level operation, so two racing writers cannot both
// succeed.
func (r *MatchRepository) UpdateMatchVersioned(ctx context.Context, m game.Match, expectedVersion int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": m.ID, "version": expectedVersion}
	m.Version = expectedVersion + 1

	res, err := r.mongo.Collection(collectionGames).ReplaceOne(ctx, filter, m)
	if err != nil {
		r.log.Errorw("failed to update match", "match_id", m.ID, "error", err)
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *MatchRepository) AppendMove(ctx context.Context, mv game.Move) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.mongo.Collection(collectionMoves).InsertOne(ctx, mv); err != nil {
		r.log.Errorw("failed to append move", "match_id", mv.GameID, "error", err)
		return err
	}
	return nil
}

func (r *MatchRepository) GetMovesByMatchID(ctx context.Context, matchID string) ([]game.Move, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"move_number": 1})
	cursor, err := r.mongo.Collection(collectionMoves).Find(ctx, bson.M{"game_id": matchID}, opts)
	if err != nil {
		r.log.Errorw("failed to load moves", "match_id", matchID, "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var moves []game.Move
	if err := cursor.All(ctx, &moves); err != nil {
		r.log.Errorw("failed to decode moves", "match_id", matchID, "error", err)
		return nil, err
	}
	return moves, nil
}

func (r *MatchRepository) SoftDeleteMatch(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now()}}
	res, err := r.mongo.Collection(collectionGames).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.log.Errorw("failed to soft delete match", "match_id", id, "error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrGameNotFound
	}
	return nil
}

func (r *MatchRepository) GetMatchesByUserID(ctx context.Context, userID string) ([]game.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"$and": []bson.M{
			{"$or": []bson.M{
				{"player_black": userID},
				{"player_white": userID},
			}},
			{"deleted": bson.M{"$ne": true}},
		},
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.mongo.Collection(collectionGames).Find(ctx, filter, opts)
	if err != nil {
		r.log.Errorw("failed to load matches for user", "user_id", userID, "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var matches []game.Match
	if err := cursor.All(ctx, &matches); err != nil {
		r.log.Errorw("failed to decode matches", "user_id", userID, "error", err)
		return nil, err
	}
	return matches, nil
}

func acceptanceKey(matchID string) string {
	return fmt.Sprintf("game:%s:acceptances", matchID)
}

func (r *MatchRepository) AddScoreAcceptance(ctx context.Context, matchID, playerID string) error {
	key := acceptanceKey(matchID)
	if err := r.redis.SAdd(ctx, key, playerID).Err(); err != nil {
		return err
	}
	// The set is scoped to one scoring phase; expire it so abandoned
	// matches do not leak keys.
	return r.redis.Expire(ctx, key, 24*time.Hour).Err()
}

func (r *MatchRepository) ScoreAcceptances(ctx context.Context, matchID string) ([]string, error) {
	return r.redis.SMembers(ctx, acceptanceKey(matchID)).Result()
}

func (r *MatchRepository) ClearScoreAcceptances(ctx context.Context, matchID string) error {
	return r.redis.Del(ctx, acceptanceKey(matchID)).Err()
}
