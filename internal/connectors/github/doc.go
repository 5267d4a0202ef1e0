// Package github implements a message source over GitHub notifications.
//
// Each notification thread becomes one unified message: the repository is
// the sender, the subject title is the content and the thread ID is the
// thread. Replying to a thread posts a comment on its issue or pull
// request.
//
// # Authentication
//
// A personal access token (classic or fine-grained) is required. Classic
// tokens need the 'notifications' scope, plus 'repo' to comment on
// private repositories.
//
// # Configuration
//
// Provider configuration accepts the following keys:
//
//   - token: the access token. Required.
//
//   - participating: "true" limits fetches to threads the user participates
//     in or is mentioned in. Default: false.
//
//   - base_url: API endpoint for GitHub Enterprise Server.
//
// # Importance
//
// Threads whose reason is a direct request (mention, review_requested,
// assign, team_mention, security_alert) are marked important so they rank
// ahead of subscription noise in the next-action list.
//
// # Rate Limiting
//
// Primary and secondary rate-limit responses are returned as
// [domain.RetryAfterError] with the reset delay, which the middleware
// retry layer honours.
//
// # Limitations
//
//   - Search is not supported by the notifications API.
//   - Replies are only possible for issue and pull request threads.
package github
