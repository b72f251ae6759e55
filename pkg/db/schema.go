package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Preferences: key-value store for user-tunable behavior
CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Detections: append-only log of classification answers
CREATE TABLE IF NOT EXISTS detections (
    id TEXT PRIMARY KEY,              -- uuid
    host TEXT NOT NULL,
    url TEXT NOT NULL,
    is_medium BOOLEAN NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    reasons TEXT,                     -- JSON array of reason strings
    source TEXT NOT NULL,             -- allowlist, cache, probe, invalid-url
    title TEXT,                       -- preview title when available
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_detections_host ON detections(host);
CREATE INDEX IF NOT EXISTS idx_detections_created ON detections(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_detections_outcome ON detections(is_medium);
`
