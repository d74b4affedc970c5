// Package jira implements the Jira webhook source adapter: signature
// validation, event-type dispatch against a static table, and canonical
// event construction, all fed into the pipeline ingest channel.
package jira

import (
	"github.com/relaywire/connector/internal/event"
	"github.com/relaywire/connector/internal/webhook"
)

// eventDefinition pairs the operation a Jira event implies with the
// extractor that resolves its primary key from the parsed body.
type eventDefinition struct {
	Operation event.Operation
	Extractor webhook.PrimaryKeyExtractor
}

// eventTable maps Jira's "webhookEvent" values to their operation and
// primary-key path. Unknown event names are not an error: the handler
// swallows them with a 200 so provider retries aren't triggered by events
// this connector simply does not route anywhere.
var eventTable = map[string]eventDefinition{
	"jira:issue_created": {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("issue.id")},
	"jira:issue_updated": {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("issue.id")},
	"jira:issue_deleted": {Operation: event.OpDelete, Extractor: webhook.PrimaryKeyByPath("issue.id")},

	"issuelink_created": {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("issueLink.id")},
	"issuelink_deleted": {Operation: event.OpDelete, Extractor: webhook.PrimaryKeyByPath("issueLink.id")},

	"project_created":          {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("project.id")},
	"project_updated":          {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("project.id")},
	"project_restored_deleted": {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("project.id")},
	"project_deleted":          {Operation: event.OpDelete, Extractor: webhook.PrimaryKeyByPath("project.id")},
	"project_soft_deleted":     {Operation: event.OpDelete, Extractor: webhook.PrimaryKeyByPath("project.id")},

	"jira:version_created":    {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("version.id")},
	"jira:version_updated":    {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("version.id")},
	"jira:version_released":   {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("version.id")},
	"jira:version_unreleased": {Operation: event.OpWrite, Extractor: webhook.PrimaryKeyByPath("version.id")},
	"jira:version_deleted":    {Operation: event.OpDelete, Extractor: webhook.PrimaryKeyByPath("version.id")},
}

// lookupEvent returns the definition for a Jira event name and whether it
// is recognized.
func lookupEvent(name string) (eventDefinition, bool) {
	def, ok := eventTable[name]
	return def, ok
}
