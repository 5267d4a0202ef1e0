package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

// setupTestServices installs a mock orchestrator with canned data and
// returns a cleanup function restoring the previous state.
func setupTestServices() (*mockOrchestrator, func()) {
	orch := &mockOrchestrator{
		messages: []domain.UnifiedMessage{{
			ID: "teams:1", SourceType: domain.SourceTeams, Content: "standup moved to 10",
			FromUser: domain.Identity{Name: "Ana"}, Timestamp: testNow.Add(-time.Hour),
		}},
		emails: []domain.UnifiedEmail{{
			ID: "gmail:1", SourceType: domain.SourceGmail, Subject: "Invoice 42",
			FromAddress: domain.Identity{Email: "billing@example.com"}, Timestamp: testNow.Add(-2 * time.Hour),
			Importance: domain.ImportanceHigh,
		}},
		notes: []domain.UnifiedNote{{
			ID: "filesystem:work/plan.md", SourceType: domain.SourceFilesystem, Title: "Plan",
			Content: "ship it", LastModified: testNow.Add(-24 * time.Hour),
		}},
		status: []domain.SourceStatus{
			{SourceType: domain.SourceGmail, Capabilities: []domain.Capability{domain.CapabilityMail}, Connected: true, Available: true,
				Flags: domain.Capabilities{CanSend: true, CanSearch: true}},
			{SourceType: domain.SourceNotion, Capabilities: []domain.Capability{domain.CapabilityNote}, LastError: "unauthorized"},
		},
	}

	oldServices, oldNow := services, now
	services = &Services{Orchestrator: orch}
	now = func() time.Time { return testNow }

	return orch, func() {
		services = oldServices
		now = oldNow
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
