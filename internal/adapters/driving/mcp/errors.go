// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants search an organisation's knowledge and inspect its
// crawl status.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// errOrganizationRequired is returned by tools called without an organisation id.
var errOrganizationRequired = errors.New("organization_id is required")
