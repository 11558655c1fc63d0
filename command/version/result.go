package version

import (
	"fmt"
	"strings"

	"github.com/0xPolygon/bssc-evm/command/helper"
)

const unknown = "unknown"

// VersionResult describes the build of the running binary
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}

	return s
}

func (r *VersionResult) GetOutput() string {
	rows := [][2]string{
		{"Release version", r.Version},
		{"Git branch", r.Branch},
		{"Commit hash", r.Commit},
		{"Build time", r.BuildTime},
		{"Go version", r.GoVersion},
	}

	kv := make([]string, len(rows))
	for i, row := range rows {
		kv[i] = fmt.Sprintf("%s|%s", row[0], orUnknown(row[1]))
	}

	var b strings.Builder

	b.WriteString("\n[VERSION INFO]\n")
	b.WriteString(helper.FormatKV(kv))
	b.WriteString("\n")

	return b.String()
}
