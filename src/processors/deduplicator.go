package processors

import "github.com/username/extractos/backend/src/models"

// Partition splits candidates into those whose identity key is unseen and those
// already present, either in existingKeys or earlier in the same batch.
// Input order is preserved and existingKeys is not modified.
func Partition(candidates []models.CanonicalTransaction, existingKeys map[string]struct{}) (fresh, duplicates []models.CanonicalTransaction) {
	fresh = []models.CanonicalTransaction{}
	duplicates = []models.CanonicalTransaction{}
	batch := make(map[string]struct{}, len(candidates))

	for _, tx := range candidates {
		_, stored := existingKeys[tx.IdentityKey]
		_, repeated := batch[tx.IdentityKey]
		if stored || repeated {
			duplicates = append(duplicates, tx)
			continue
		}
		batch[tx.IdentityKey] = struct{}{}
		fresh = append(fresh, tx)
	}
	return fresh, duplicates
}

// KeySet builds the lookup set Partition expects from a list of stored keys.
func KeySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
