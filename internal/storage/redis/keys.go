package redis

import (
	"fmt"

	"github.com/mcoot/cadastro/internal/model"
)

// Key prefix for all application data
const keyPrefix = "cadastro"

// accountKey returns the Redis key for a StoredAccount
func accountKey(uid model.AccountUID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, uid)
}

// emailIndexKey returns the Redis key for the email -> uid index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// documentKey returns the Redis key for a document in a collection
func documentKey(collection string, id model.AccountUID) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, collection, id)
}

// userProfileKey returns the Redis key for a users/{uid} document
func userProfileKey(uid model.AccountUID) string {
	return documentKey(model.UsersCollection, uid)
}
