// Package html provides a Normaliser implementation for HTML documents.
// Pages are parsed with golang.org/x/net/html for the title and links and
// converted to markdown so headings, lists and tables survive chunking.
package html
