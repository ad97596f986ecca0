// Package models holds the persisted entities and the request payloads that
// create or patch them.
package models

// All lists every entity in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}}
}
