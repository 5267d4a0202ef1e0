// Package google builds authenticated Google API clients from provider
// credentials and maps googleapi errors onto domain errors so the retry
// middleware can tell throttles from auth failures.
//
//	svc, err := google.NewGmailService(ctx, google.Credentials{
//		ClientID:     id,
//		ClientSecret: secret,
//		RefreshToken: token,
//	})
//
// # OAuth2 Scopes
//
// The Gmail adapter requests:
//   - https://www.googleapis.com/auth/gmail.readonly (restricted)
//   - https://www.googleapis.com/auth/gmail.send (sensitive)
//
// For user-created internal apps, restricted scopes don't require verification.
package google
