package domain

// DefaultKeyPrefix namespaces every key the service reads.
const DefaultKeyPrefix = "tardis:"

// RecordKey returns the hash key of a record, e.g. "tardis:dataset:42".
func RecordKey(prefix string, t EntityType, id string) string {
	return prefix + t.RecordName() + ":" + id
}

// SearchDocPrefix returns the key prefix of documents indexed under indexName.
func SearchDocPrefix(prefix, indexName string) string {
	return prefix + "search:" + indexName + ":"
}
