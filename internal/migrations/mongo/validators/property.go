package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"title",
			"category",
			"rent_type",
			"price",
			"address",
			"is_disabled",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 120,
			},

			"category": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Property Rentals",
					"Commercial",
					"Land",
					"Parking",
					"Event",
				},
			},

			"rent_type": bson.M{
				"bsonType":    "array",
				"minItems":    1,
				"maxItems":    3,
				"uniqueItems": true,
				"items": bson.M{
					"bsonType": "string",
					"enum":     []string{"hourly", "monthly", "yearly"},
				},
			},

			"price": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 300,
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"is_disabled": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
