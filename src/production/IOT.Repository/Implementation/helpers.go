package implementation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// now is truncated to what BSON dates can hold so a created document
// compares equal to the same document read back.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// mapWriteError converts driver errors into repository sentinel errors
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return interfaces.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		for index, field := range uniqueIndexFields {
			if strings.Contains(msg, index) {
				return &interfaces.DuplicateKeyError{Field: field}
			}
		}
		return &interfaces.DuplicateKeyError{}
	}
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var item T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("find %s by id: %w", coll.Name(), err)
	}
	return &item, nil
}

func existsByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	return n > 0, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// fieldUpdate accumulates a partial update. Empty optional strings are
// unset rather than stored so sparse unique indexes keep ignoring them.
type fieldUpdate struct {
	set   bson.M
	unset bson.M
}

func newFieldUpdate() *fieldUpdate {
	return &fieldUpdate{set: bson.M{}, unset: bson.M{}}
}

func (u *fieldUpdate) optionalString(field string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		u.unset[field] = ""
		return
	}
	u.set[field] = *v
}

func setIf[T any](u *fieldUpdate, field string, v *T) {
	if v != nil {
		u.set[field] = *v
	}
}

func (u *fieldUpdate) document() bson.M {
	u.set["updatedAt"] = now()
	doc := bson.M{"$set": u.set}
	if len(u.unset) > 0 {
		doc["$unset"] = u.unset
	}
	return doc
}

func updateByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update *fieldUpdate) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item T
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update.document(), opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || mongo.IsDuplicateKeyError(err) {
			return nil, mapWriteError(err)
		}
		return nil, fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	return &item, nil
}

// hierarchy lists collections from root to leaf with the field that points
// at the previous level.
var hierarchy = []struct {
	collection  string
	parentField string
}{
	{organizationsCollection, ""},
	{sitesCollection, "organizationId"},
	{measuringPointsCollection, "siteId"},
	{boardsCollection, "measuringPointId"},
	{sensorsCollection, "boardId"},
}

const (
	levelOrganization = iota
	levelSite
	levelMeasuringPoint
	levelBoard
	levelSensor
)

// deleteTree removes the document at level with the given id. With cascade
// it first removes every descendant, leaf collection first, so an
// interrupted delete never leaves children without a parent above them.
func deleteTree(ctx context.Context, db *mongo.Database, level int, id primitive.ObjectID, cascade bool) (int64, error) {
	root := db.Collection(hierarchy[level].collection)

	exists, err := existsByID(ctx, root, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, interfaces.ErrNotFound
	}

	ids := [][]primitive.ObjectID{{id}}
	if cascade {
		for l := level + 1; l < len(hierarchy); l++ {
			parents := ids[len(ids)-1]
			if len(parents) == 0 {
				break
			}
			children, err := distinctIDs(ctx, db.Collection(hierarchy[l].collection), bson.M{hierarchy[l].parentField: bson.M{"$in": parents}})
			if err != nil {
				return 0, err
			}
			ids = append(ids, children)
		}
	}

	var deleted int64
	for i := len(ids) - 1; i >= 1; i-- {
		if len(ids[i]) == 0 {
			continue
		}
		coll := db.Collection(hierarchy[level+i].collection)
		res, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids[i]}})
		if err != nil {
			return deleted, fmt.Errorf("cascade delete %s: %w", coll.Name(), err)
		}
		deleted += res.DeletedCount
	}

	res, err := root.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return deleted, fmt.Errorf("delete %s: %w", root.Name(), err)
	}
	if res.DeletedCount == 0 {
		return deleted, interfaces.ErrNotFound
	}
	return deleted + res.DeletedCount, nil
}

func distinctIDs(ctx context.Context, coll *mongo.Collection, filter interface{}) ([]primitive.ObjectID, error) {
	values, err := coll.Distinct(ctx, "_id", filter)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", coll.Name(), err)
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
