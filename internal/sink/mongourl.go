// Package sink implements pipeline.Sink adapters. Today the only
// implementation is MongoDB.
package sink

import (
	"fmt"
	"strings"
)

const (
	schemePlain = "mongodb://"
	schemeSRV   = "mongodb+srv://"
)

// ParseMongoURL splits a MongoDB connection string into the base URL
// (suitable for passing to the driver), the database name, and an
// optional collection embedded in the URL path
// (mongodb://host/database/collection). A URL naming only a database
// (mongodb://host/database) returns an empty collection rather than an
// error: an integration's explicit SinkConfig.Collection always wins, but
// a bare database URL should still parse for sinks that rely on it.
func ParseMongoURL(rawURL string) (baseURL, database, collection string, err error) {
	rest, ok := strings.CutPrefix(rawURL, schemePlain)
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, schemeSRV)
	}
	if !ok {
		return "", "", "", fmt.Errorf("invalid mongodb url: must start with %s or %s", schemePlain, schemeSRV)
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "", "", "", fmt.Errorf("invalid mongodb url: missing database path")
	}

	baseURL = rawURL[:len(rawURL)-len(rest)+slash]
	path := rest[slash+1:]
	if q := strings.IndexByte(path, '?'); q >= 0 {
		path = path[:q]
	}

	segments := strings.SplitN(path, "/", 2)
	database = segments[0]
	if database == "" {
		return "", "", "", fmt.Errorf("invalid mongodb url: database name is empty")
	}
	if len(segments) == 2 && segments[1] != "" {
		collection = segments[1]
	}
	return baseURL, database, collection, nil
}
