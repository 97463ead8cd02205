package constants

const (
	GetBlobByKey = `
	SELECT value FROM kv_blobs WHERE key = $1
	`

	UpsertBlob = `
	INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	DeleteBlobByKey = `
	DELETE FROM kv_blobs WHERE key = $1
	`

	CreateBlobTable = `
	CREATE TABLE IF NOT EXISTS kv_blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
)
