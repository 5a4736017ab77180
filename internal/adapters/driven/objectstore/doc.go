// Package objectstore holds the driven.ObjectStore adapters for uploaded
// source files.
//
// Adapters:
//   - filesystem: a directory tree on local disk
//   - gcs: a Google Cloud Storage bucket
package objectstore
