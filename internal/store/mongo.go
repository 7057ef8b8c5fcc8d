package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names match the ones created by the bot process
const (
	ServerConfigCollection = "serverconfigs"
	AuditLogCollection     = "auditlogs"
)

// MongoStore keeps configurations as documents keyed by a unique guildId
type MongoStore struct {
	client  *mongo.Client
	configs *mongo.Collection
	audits  *mongo.Collection
}

type serverConfigDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GuildID   string             `bson:"guildId"`
	GuildName string             `bson:"guildName"`
	Welcome   welcomeDoc         `bson:"welcome"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type welcomeDoc struct {
	Enabled   bool     `bson:"enabled"`
	ChannelID string   `bson:"channelId"`
	Message   string   `bson:"message"`
	ImageURL  string   `bson:"imageUrl"`
	Embed     embedDoc `bson:"embed"`
}

type embedDoc struct {
	Enabled     bool        `bson:"enabled"`
	Title       string      `bson:"title"`
	Description string      `bson:"description"`
	Color       interface{} `bson:"color,omitempty"` // string or number
	Thumbnail   bool        `bson:"thumbnail"`
	Footer      string      `bson:"footer"`
	Image       string      `bson:"image"`
}

type auditDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	Action      string    `bson:"action"`
	Resource    string    `bson:"resource"`
	DetailsJSON string    `bson:"detailsJson"`
	Timestamp   time.Time `bson:"timestamp"`
}

// NewMongoStore connects to uri and ensures the guildId index exists
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	s := newMongoStore(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:  client,
		configs: db.Collection(ServerConfigCollection),
		audits:  db.Collection(AuditLogCollection),
	}
}

// EnsureIndexes creates the unique guildId index and the audit lookup index
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.configs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guildId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storageErr("create-index", err)
	}
	_, err = s.audits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "resource", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return storageErr("create-index", err)
}

func (s *MongoStore) GetOrCreate(ctx context.Context, guildID, guildName string) (*models.ServerConfig, error) {
	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"guildName": guildName,
		"welcome":   toWelcomeDoc(welcome.Defaults()),
		"createdAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc serverConfigDoc
	err := s.configs.FindOneAndUpdate(ctx, bson.M{"guildId": guildID}, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the insert race; the winner's document is there now.
		err = s.configs.FindOne(ctx, bson.M{"guildId": guildID}).Decode(&doc)
	}
	if err != nil {
		return nil, storageErr("get-or-create", err)
	}

	if doc.GuildName != guildName {
		_, err := s.configs.UpdateOne(ctx,
			bson.M{"guildId": guildID},
			bson.M{"$set": bson.M{"guildName": guildName, "updatedAt": now}},
		)
		if err != nil {
			return nil, storageErr("rename", err)
		}
		doc.GuildName = guildName
		doc.UpdatedAt = now
	}
	return doc.toModel(), nil
}

func (s *MongoStore) UpsertWelcome(ctx context.Context, guildID, guildName string, cfg welcome.Config) (*models.ServerConfig, error) {
	now := time.Now().UTC()
	set := bson.M{"welcome": toWelcomeDoc(cfg), "updatedAt": now}
	onInsert := bson.M{"createdAt": now}
	if guildName != "" {
		set["guildName"] = guildName
	} else {
		onInsert["guildName"] = ""
	}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc serverConfigDoc
	if err := s.configs.FindOneAndUpdate(ctx, bson.M{"guildId": guildID}, update, opts).Decode(&doc); err != nil {
		return nil, storageErr("upsert-welcome", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) Get(ctx context.Context, guildID string) (*models.ServerConfig, error) {
	var doc serverConfigDoc
	err := s.configs.FindOne(ctx, bson.M{"guildId": guildID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := s.audits.InsertOne(ctx, auditDoc{
		ID:          entry.ID.String(),
		UserID:      entry.UserID,
		Action:      entry.Action,
		Resource:    entry.Resource,
		DetailsJSON: entry.DetailsJSON,
		Timestamp:   entry.Timestamp,
	})
	return storageErr("audit", err)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return storageErr("ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toWelcomeDoc(c welcome.Config) welcomeDoc {
	return welcomeDoc{
		Enabled:   c.Enabled,
		ChannelID: c.ChannelID,
		Message:   c.Message,
		ImageURL:  c.ImageURL,
		Embed: embedDoc{
			Enabled:     c.Embed.Enabled,
			Title:       c.Embed.Title,
			Description: c.Embed.Description,
			Color:       colorToBSON(c.Embed.Color),
			Thumbnail:   c.Embed.Thumbnail,
			Footer:      c.Embed.Footer,
			Image:       c.Embed.Image,
		},
	}
}

func (d serverConfigDoc) toModel() *models.ServerConfig {
	w := d.Welcome
	return &models.ServerConfig{
		GuildID:   d.GuildID,
		GuildName: d.GuildName,
		Welcome: welcome.Config{
			Enabled:   w.Enabled,
			ChannelID: w.ChannelID,
			Message:   w.Message,
			ImageURL:  w.ImageURL,
			Embed: welcome.Embed{
				Enabled:     w.Embed.Enabled,
				Title:       w.Embed.Title,
				Description: w.Embed.Description,
				Color:       colorFromBSON(w.Embed.Color),
				Thumbnail:   w.Embed.Thumbnail,
				Footer:      w.Embed.Footer,
				Image:       w.Embed.Image,
			},
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func colorToBSON(c welcome.Color) interface{} {
	if n, ok := c.Int(); ok {
		return int64(n)
	}
	if s, ok := c.Hex(); ok {
		return s
	}
	return nil
}

func colorFromBSON(v interface{}) welcome.Color {
	switch c := v.(type) {
	case string:
		return welcome.HexColor(c)
	case int32:
		return welcome.IntColor(int(c))
	case int64:
		return welcome.IntColor(int(c))
	case float64:
		return welcome.IntColor(int(c))
	default:
		return welcome.Color{}
	}
}
