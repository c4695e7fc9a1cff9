package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

const (
	testCodesCollection  = "testcodes"
	testScoresCollection = "testscores"
	usersCollection      = "users"
)

// Store keeps the test registry, the scores and the user directory in one
// MongoDB database.
type Store struct {
	testCodes *mongo.Collection
	scores    *mongo.Collection
	users     *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		testCodes: db.Collection(testCodesCollection),
		scores:    db.Collection(testScoresCollection),
		users:     db.Collection(usersCollection),
	}
}

// Connect dials uri, checks the connection and returns a store on database
// with its indexes in place. The caller owns the client.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	store := NewStore(client.Database(database))
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, store, nil
}

// EnsureIndexes creates the unique (testCode, userId) index that backs the
// one-record-per-user rule, plus the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.scores.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "testCode", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "testCode", Value: 1}, {Key: "score", Value: -1}, {Key: "timeTaken", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create score indexes: %w", err)
	}

	_, err = s.testCodes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "testCode", Value: 1}, {Key: "isActive", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create test code index: %w", err)
	}
	return nil
}

// Test registry

func (s *Store) FindByCode(ctx context.Context, code string) (quiz.TestCode, error) {
	return s.findTestCode(ctx, bson.M{"testCode": code})
}

func (s *Store) FindActiveByCode(ctx context.Context, code string) (quiz.TestCode, error) {
	return s.findTestCode(ctx, bson.M{"testCode": code, "isActive": true})
}

func (s *Store) findTestCode(ctx context.Context, filter bson.M) (quiz.TestCode, error) {
	var testCode quiz.TestCode
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := s.testCodes.FindOne(ctx, filter, opts).Decode(&testCode); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return quiz.TestCode{}, quiz.ErrNotFound
		}
		return quiz.TestCode{}, err
	}
	return testCode, nil
}

func (s *Store) Create(ctx context.Context, testCode quiz.TestCode) error {
	if testCode.CreatedAt.IsZero() {
		testCode.CreatedAt = time.Now().UTC()
	}
	_, err := s.testCodes.InsertOne(ctx, testCode)
	return err
}

func (s *Store) SetActive(ctx context.Context, code string, active bool) error {
	result, err := s.testCodes.UpdateMany(ctx, bson.M{"testCode": code}, bson.M{"$set": bson.M{"isActive": active}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return quiz.ErrNotFound
	}
	return nil
}

// Scores

func (s *Store) FindOne(ctx context.Context, testCode, userID string) (quiz.TestScore, error) {
	var record quiz.TestScore
	err := s.scores.FindOne(ctx, bson.M{"testCode": testCode, "userId": userID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return quiz.TestScore{}, quiz.ErrNotFound
		}
		return quiz.TestScore{}, err
	}
	return record, nil
}

func (s *Store) FindAllByTestCode(ctx context.Context, testCode string) ([]quiz.TestScore, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "score", Value: -1},
		{Key: "timeTaken", Value: 1},
		{Key: "_id", Value: 1},
	})
	return s.findScores(ctx, bson.M{"testCode": testCode}, opts)
}

func (s *Store) FindAllByUser(ctx context.Context, userID string) ([]quiz.TestScore, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}})
	return s.findScores(ctx, bson.M{"userId": userID}, opts)
}

func (s *Store) findScores(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]quiz.TestScore, error) {
	cur, err := s.scores.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	scores := make([]quiz.TestScore, 0)
	if err := cur.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *Store) Insert(ctx context.Context, record *quiz.TestScore) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, err := s.scores.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return quiz.ErrDuplicateScore
		}
		return err
	}
	return nil
}

func (s *Store) Update(ctx context.Context, record quiz.TestScore) error {
	return s.updateScore(ctx, record.ID, bson.M{
		"score":          record.Score,
		"totalQuestions": record.TotalQuestions,
		"timeTaken":      record.TimeTaken,
		"timestamp":      record.Timestamp,
	})
}

func (s *Store) UpdateRank(ctx context.Context, id string, rank int) error {
	return s.updateScore(ctx, id, bson.M{"rank": rank})
}

func (s *Store) updateScore(ctx context.Context, id string, fields bson.M) error {
	result, err := s.scores.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return quiz.ErrNotFound
	}
	return nil
}

// Users

type userDocument struct {
	ID       any    `bson:"_id"`
	Username string `bson:"username"`
	Email    string `bson:"email"`
}

// LookupUsers resolves user ids stored either as ObjectIDs or as plain
// strings. Unknown ids are absent from the result.
func (s *Store) LookupUsers(ctx context.Context, userIDs []string) (map[string]quiz.UserInfo, error) {
	users := make(map[string]quiz.UserInfo, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	ids := make([]any, 0, len(userIDs)*2)
	for _, id := range userIDs {
		ids = append(ids, id)
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			ids = append(ids, objID)
		}
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "email": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		var id string
		switch v := doc.ID.(type) {
		case primitive.ObjectID:
			id = v.Hex()
		case string:
			id = v
		default:
			continue
		}
		users[id] = quiz.UserInfo{UserID: id, Username: doc.Username, Email: doc.Email}
	}
	return users, cur.Err()
}
