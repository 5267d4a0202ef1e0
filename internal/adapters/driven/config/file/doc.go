// Package file provides the file-backed ConfigStore.
//
// The default file is ~/.hub/config.toml; config.yaml or config.yml are
// read instead when only they exist, and any path ending in .yaml or .yml
// is parsed as YAML. A .env file in the same directory is loaded into the
// environment first, and string values may reference variables as ${VAR}:
//
//	[providers.gmail]
//	client_id = "123.apps.googleusercontent.com"
//	client_secret = "${GMAIL_CLIENT_SECRET}"
//	refresh_token = "${GMAIL_REFRESH_TOKEN}"
package file
