// Package knowledge holds the persistent model of the discovery backend:
// topics, their per-language articles, aliases, tags, discovery records and
// chat history, plus the error taxonomy shared by every layer that touches them.
package knowledge
