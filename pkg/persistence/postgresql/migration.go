package postgresql

// migrations returns the PostgreSQL schema migrations, keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS documents (
				id VARCHAR(255) PRIMARY KEY,
				status VARCHAR(50) NOT NULL DEFAULT 'PENDING',
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS document_indexes (
				document_id VARCHAR(255) NOT NULL,
				index_type VARCHAR(100) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'PENDING',
				version BIGINT NOT NULL DEFAULT 1,
				observed_version BIGINT NOT NULL DEFAULT 0,
				index_data JSONB,
				error_message TEXT,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				PRIMARY KEY (document_id, index_type)
			);

			CREATE INDEX IF NOT EXISTS idx_document_indexes_status ON document_indexes(status);
			CREATE INDEX IF NOT EXISTS idx_document_indexes_document_id ON document_indexes(document_id);
			CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
		`,
	}
}
