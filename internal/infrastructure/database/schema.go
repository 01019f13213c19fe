package database

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "documents table",
		sql: `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		storage_key TEXT NOT NULL,
		content_type VARCHAR(100) NOT NULL DEFAULT 'application/pdf',
		requires_signature BOOLEAN NOT NULL DEFAULT FALSE,
		signature_hash VARCHAR(64),
		signed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_documents_company ON documents(company_id);
	`,
	},
	{
		name: "signature_requests table",
		sql: `
	CREATE TABLE IF NOT EXISTS signature_requests (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		document_id TEXT NOT NULL REFERENCES documents(id),
		title TEXT NOT NULL,
		message TEXT,
		ordered_signing BOOLEAN NOT NULL DEFAULT FALSE,
		state VARCHAR(20) NOT NULL,
		document_name TEXT NOT NULL,
		document_hash VARCHAR(64) NOT NULL,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		signed_artifact_key TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_signature_requests_company ON signature_requests(company_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_signature_requests_document ON signature_requests(document_id);
	`,
	},
	{
		name: "signature_signers table",
		sql: `
	CREATE TABLE IF NOT EXISTS signature_signers (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES signature_requests(id) ON DELETE CASCADE,
		signer_id TEXT NOT NULL,
		signer_name TEXT NOT NULL,
		signer_email TEXT NOT NULL DEFAULT '',
		signing_order INT NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0,
		kind VARCHAR(20) NOT NULL,
		signed BOOLEAN NOT NULL DEFAULT FALSE,
		signed_at TIMESTAMPTZ,
		captured_data JSONB,
		certificate_hash VARCHAR(64),
		CONSTRAINT uq_signature_signers_request_signer UNIQUE (request_id, signer_id)
	);
	CREATE INDEX IF NOT EXISTS idx_signature_signers_request ON signature_signers(request_id);
	`,
	},
	{
		name: "api_logs table",
		sql: `
	CREATE TABLE IF NOT EXISTS api_logs (
		id BIGSERIAL PRIMARY KEY,
		endpoint TEXT NOT NULL,
		method VARCHAR(10) NOT NULL,
		request_body TEXT,
		response_body TEXT,
		status_code INT NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		request_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_api_logs_request ON api_logs(request_id);
	`,
	},
	{
		name: "signature_requests artifact claim",
		sql: `
	ALTER TABLE signature_requests ADD COLUMN IF NOT EXISTS artifact_claimed_at TIMESTAMPTZ;
	`,
	},
}
