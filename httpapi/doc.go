// Package httpapi exposes the gateway pipelines over HTTP using gin.
//
// Every route under /api/ai requires a bearer token whose identity holds
// the admin role:
//
//	POST /api/ai/generate     generate a content block (cached)
//	POST /api/ai/refine       rewrite existing content
//	POST /api/ai/outline      plan a lesson as a list of blocks
//	POST /api/ai/alt-text     describe an image
//	GET  /api/ai/usage-stats  aggregate the usage ledger
//
// Errors are returned as {"error": {"message", "code", "field"}}.
package httpapi
