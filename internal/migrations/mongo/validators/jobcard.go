package validators

import "go.mongodb.org/mongo-driver/bson"

var JobcardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"status",
			"mechanic_ids",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"status": bson.M{
				"enum": []string{"open", "closed", "abandoned"},
			},

			"service_details": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"description"},
					"properties": bson.M{
						"description": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 200,
						},
						"notes": bson.M{
							"bsonType":  "string",
							"maxLength": 500,
						},
					},
				},
			},

			"mechanic_ids": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"closed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var JobcardPartValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"jobcard_id",
			"part_id",
			"quantity",
			"unit_price",
			"total_price",
			"assigned_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"jobcard_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"part_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"quantity": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"unit_price": bson.M{
				"bsonType": []string{"double", "int", "decimal"},
				"minimum":  0,
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "decimal"},
				"minimum":  0,
			},

			"assigned_at": bson.M{
				"bsonType": "date",
			},

			"used_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
