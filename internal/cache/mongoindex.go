/*------------------------------------------------------------------------------
* mongoindex.go : cache-rebuild audit log, document-store backend
*
* Alternate to index.go's column store for deployments that already run a
* document store for other service-shell bookkeeping (see SPEC_FULL's
* domain-stack table); same RebuildRecord shape, different sink.
*-----------------------------------------------------------------------------*/
package cache

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taupgo/internal/taperror"
)

// rebuildDoc is the BSON shape persisted for one RebuildRecord.
type rebuildDoc struct {
	ModelName string    `bson:"model_name"`
	Reason    string    `bson:"reason"`
	At        time.Time `bson:"at"`
}

// MongoIndex is the document-store counterpart of Index.
type MongoIndex struct {
	coll *mongo.Collection
}

// OpenMongoIndex connects to uri and targets database/collection "rebuilds".
func OpenMongoIndex(ctx context.Context, uri, database string) (*MongoIndex, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "connecting cache index (mongo)")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "pinging cache index (mongo)")
	}
	return &MongoIndex{coll: client.Database(database).Collection("rebuilds")}, nil
}

// Record appends one rebuild audit document.
func (ix *MongoIndex) Record(ctx context.Context, rec RebuildRecord) error {
	doc := rebuildDoc{ModelName: rec.ModelName, Reason: rec.Reason, At: rec.At}
	if _, err := ix.coll.InsertOne(ctx, doc); err != nil {
		return taperror.Wrap(taperror.ModelReadFailure, err, "recording cache rebuild (mongo)")
	}
	return nil
}

// History returns the most recent rebuild documents for modelName, newest first.
func (ix *MongoIndex) History(ctx context.Context, modelName string, limit int64) ([]RebuildRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cur, err := ix.coll.Find(ctx, bson.M{"model_name": modelName}, opts)
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "querying cache rebuild history (mongo)")
	}
	defer cur.Close(ctx)

	var out []RebuildRecord
	for cur.Next(ctx) {
		var doc rebuildDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, taperror.Wrap(taperror.ModelReadFailure, err, "decoding cache rebuild document")
		}
		out = append(out, RebuildRecord{ModelName: doc.ModelName, Reason: doc.Reason, At: doc.At})
	}
	return out, nil
}
