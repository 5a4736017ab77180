// Package web implements driven.Crawler over HTTP. It walks a registered
// domain breadth-first, stays on the start host and converts each HTML page
// to markdown.
package web
