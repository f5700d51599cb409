// internal/common/config/schema.go
package config

// settingsSchema constrains the keys the assistant reads. Unknown keys are
// allowed and ignored.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "whatsappDesktopPaths": {"type": "array", "items": {"type": "string"}},
    "chromeProfilePath": {"type": "string"},
    "similarityThreshold": {"type": "number", "minimum": 0, "maximum": 1},
    "language": {"type": "string"},
    "wakeWords": {"type": "array", "items": {"type": "string"}},
    "wake_word": {"type": ["string", "array"]},
    "tts_provider": {"type": "string"},
    "simulate": {"type": "boolean"},
    "tts": {
      "type": "object",
      "properties": {
        "engine": {"type": "string"},
        "voice": {"type": "string"},
        "rate": {"type": "integer", "minimum": 1}
      }
    },
    "appPaths": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "string"}}
    },
    "memory": {
      "type": "object",
      "properties": {
        "jsonPath": {"type": "string"},
        "dbPath": {"type": "string"},
        "driver": {"type": "string", "enum": ["sqlite", "postgres"]},
        "dsn": {"type": "string"}
      }
    },
    "scheduler": {
      "type": "object",
      "properties": {"interval": {"type": "string"}}
    },
    "redis": {
      "type": "object",
      "properties": {
        "address": {"type": "string"},
        "password": {"type": "string"},
        "db": {"type": "integer", "minimum": 0},
        "ttl": {"type": "string"}
      }
    },
    "devApi": {
      "type": "object",
      "properties": {
        "address": {"type": "string"},
        "enabled": {"type": "boolean"}
      }
    },
    "logging": {
      "type": "object",
      "properties": {
        "level": {"type": "string"},
        "format": {"type": "string", "enum": ["json", "console"]},
        "output": {"type": "string"}
      }
    },
    "timeParse": {
      "type": "object",
      "properties": {
        "rollover": {"type": "string", "enum": ["inferred_today", "unless_tomorrow"]}
      }
    }
  }
}`
