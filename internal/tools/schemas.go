package tools

import "encoding/json"

var (
	collectionNameSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"collection_name": {"type": "string"}},
		"required": ["collection_name"]
	}`)

	mintSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"transaction_hash": {"type": "string"},
			"user_wallet_address": {"type": "string"},
			"collection_name": {"type": "string"}
		},
		"required": ["transaction_hash", "user_wallet_address", "collection_name"]
	}`)

	emptySchema = json.RawMessage(`{"type": "object", "properties": {}, "required": []}`)

	deploySchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"transaction_hash": {"type": "string"},
			"collection_name": {"type": "string"},
			"symbol": {"type": "string"},
			"price_eth": {"type": "number"},
			"supply": {"type": "integer"},
			"description": {"type": "string"}
		},
		"required": ["transaction_hash", "collection_name", "symbol", "price_eth", "supply", "description"]
	}`)
)
