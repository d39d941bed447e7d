// Package mongostore implements repository.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/domain/model"
)

const defaultTimeout = 5 * time.Second

// Store keeps users, levels and leaderboards in three collections.
type Store struct {
	client *mongo.Client // nil when built from an existing database
	db     *mongo.Database

	usersName        string
	levelsName       string
	leaderboardsName string
	timeout          time.Duration
}

var _ repository.Store = (*Store)(nil)

// New builds a store on db. The caller owns the client.
func New(db *mongo.Database, opts ...Option) *Store {
	s := &Store{
		db:               db,
		usersName:        "users",
		levelsName:       "levels",
		leaderboardsName: "leaderboards",
		timeout:          defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials uri, checks the primary answers and ensures indexes. Close
// disconnects the client.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	s := New(client.Database(database), opts...)
	s.client = client

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the unique username index and the level listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.levels().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "creator", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create levels index: %w", err)
	}
	return nil
}

func (s *Store) users() *mongo.Collection        { return s.db.Collection(s.usersName) }
func (s *Store) levels() *mongo.Collection       { return s.db.Collection(s.levelsName) }
func (s *Store) leaderboards() *mongo.Collection { return s.db.Collection(s.leaderboardsName) }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// findOne decodes the first match into out, mapping a miss to ErrNotFound.
func (s *Store) findOne(ctx context.Context, c *mongo.Collection, filter bson.D, out any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := c.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.Name(), err)
	}
	return nil
}

// swap replaces the document with _id=id only if its version still equals
// version.
func (s *Store) swap(ctx context.Context, c *mongo.Collection, id string, version int64, doc any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := c.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "version", Value: version}}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("replace in %s: %w", c.Name(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (s *Store) insert(ctx context.Context, c *mongo.Collection, doc any, dup error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dup
		}
		return fmt.Errorf("insert into %s: %w", c.Name(), err)
	}
	return nil
}

func (s *Store) deleteOne(ctx context.Context, c *mongo.Collection, id string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := c.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", c.Name(), err)
	}
	return res.DeletedCount, nil
}

func (s *Store) CreateUser(ctx context.Context, u model.User) error {
	return s.insert(ctx, s.users(), u, repository.ErrDuplicate)
}

func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := s.findOne(ctx, s.users(), bson.D{{Key: "_id", Value: id}}, &u)
	return u, err
}

func (s *Store) UserByName(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := s.findOne(ctx, s.users(), bson.D{{Key: "username", Value: username}}, &u)
	return u, err
}

func (s *Store) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	next := u.Clone()
	next.Version++
	if err := s.swap(ctx, s.users(), u.ID, u.Version, next); err != nil {
		return model.User{}, err
	}
	return next, nil
}

func (s *Store) CreateLevel(ctx context.Context, l model.Level) error {
	return s.insert(ctx, s.levels(), l, repository.ErrDuplicate)
}

func (s *Store) Level(ctx context.Context, id string) (model.Level, error) {
	var l model.Level
	err := s.findOne(ctx, s.levels(), bson.D{{Key: "_id", Value: id}}, &l)
	return l, err
}

func (s *Store) Levels(ctx context.Context, f repository.LevelFilter) ([]model.Level, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.D{}
	if f.Creator != "" {
		filter = append(filter, bson.E{Key: "creator", Value: f.Creator})
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := s.levels().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find levels: %w", err)
	}
	out := []model.Level{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode levels: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateLevel(ctx context.Context, l model.Level) (model.Level, error) {
	next := l
	next.Version++
	if err := s.swap(ctx, s.levels(), l.ID, l.Version, next); err != nil {
		return model.Level{}, err
	}
	return next, nil
}

func (s *Store) DeleteLevel(ctx context.Context, id string) error {
	n, err := s.deleteOne(ctx, s.levels(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) Leaderboard(ctx context.Context, levelID string) (model.Leaderboard, error) {
	var lb model.Leaderboard
	err := s.findOne(ctx, s.leaderboards(), bson.D{{Key: "_id", Value: levelID}}, &lb)
	return lb, err
}

func (s *Store) CreateLeaderboard(ctx context.Context, lb model.Leaderboard) error {
	return s.insert(ctx, s.leaderboards(), lb, repository.ErrConflict)
}

func (s *Store) UpdateLeaderboard(ctx context.Context, lb model.Leaderboard) (model.Leaderboard, error) {
	next := lb.Clone()
	next.Version++
	if err := s.swap(ctx, s.leaderboards(), lb.ID, lb.Version, next); err != nil {
		return model.Leaderboard{}, err
	}
	return next, nil
}

func (s *Store) DeleteLeaderboard(ctx context.Context, levelID string) error {
	_, err := s.deleteOne(ctx, s.leaderboards(), levelID)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Close disconnects the client when the store dialled it.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
