package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionJSON bool

type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// currentBuild describes the running binary. A dev build reports the
// module version and VCS revision recorded by the toolchain, if any.
func currentBuild() buildInfo {
	b := buildInfo{
		Version:  version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			b.Commit = s.Value[:12]
		}
	}
	return b
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipServicesAnnotation: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		b := currentBuild()
		if versionJSON {
			return printJSON(cmd, b)
		}
		cmd.Printf("hub version %s", b.Version)
		if b.Commit != "" {
			cmd.Printf(" (%s)", b.Commit)
		}
		cmd.Printf(" %s %s\n", b.Go, b.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output build details as JSON")
	rootCmd.AddCommand(versionCmd)
}
