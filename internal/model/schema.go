package model

// Models lists every table owned by the service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&EmbeddingRecord{},
		&JobVector{},
		&CandidateVector{},
	}
}

// VectorIndexSQL creates the approximate nearest-neighbour indexes used by the
// cosine-distance searches.
var VectorIndexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_job_vectors_embedding ON job_vectors USING hnsw (embedding vector_cosine_ops);`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_vectors_embedding ON candidate_vectors USING hnsw (embedding vector_cosine_ops);`,
}
