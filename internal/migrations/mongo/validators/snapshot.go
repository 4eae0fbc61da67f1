package validators

import "go.mongodb.org/mongo-driver/bson"

// SnapshotValidator matches the documents written by the mongo snapshot
// store: the scope id as _id, the encoded ledger and a write timestamp.
var SnapshotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"payload",
			"updated_at",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"payload": bson.M{
				"bsonType": "binData",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
