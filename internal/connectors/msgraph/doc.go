// Package msgraph implements Outlook mail, Teams chat and OneNote page
// sources on the Microsoft Graph REST API.
//
// All three sources share one account configuration. Each source builds
// its own authenticated client on Connect and verifies it with GET /me.
//
// Required delegated permissions:
//   - Outlook: Mail.ReadWrite, Mail.Send
//   - Teams: Chat.ReadWrite
//   - OneNote: Notes.ReadWrite
package msgraph
