// Package html extracts readable text from HTML bodies.
// It strips tags, scripts and styles, and decodes entities, so HTML
// email bodies, Teams messages and OneNote pages become searchable
// plain text.
package html
