// Package normalisers holds the body converters shared by the source
// adapters. Each subpackage turns one wire format into the plain text
// carried by the unified entities:
//
//   - eml parses and composes RFC 5322 messages (Gmail raw, IMAP).
//   - html extracts visible text from HTML bodies (Outlook, Teams, OneNote).
//   - markdown strips Markdown syntax from notebook pages (filesystem).
package normalisers
