package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// complete runs cobra's hidden completion command and returns the
// suggested values without the trailing directive line.
func complete(t *testing.T, args ...string) []string {
	t.Helper()
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs(append([]string{"__complete"}, args...))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("__complete %v: %v", args, err)
	}
	var values []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if strings.HasPrefix(line, ":") {
			break
		}
		values = append(values, line)
	}
	return values
}

func TestCompleteDatasetArg(t *testing.T) {
	got := strings.Join(complete(t, "render", ""), ",")
	if got != strings.Join(datasetExtensions, ",") {
		t.Errorf("dataset completion = %q, want the dataset extensions", got)
	}
	if got := complete(t, "render", "sales.csv", ""); len(got) != 0 {
		t.Errorf("second argument completion = %v, want none", got)
	}
}

func TestCompleteFlagValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"mode", []string{"layout", "sales.csv", "--mode", ""}, "grouped,stacked"},
		{"theme", []string{"explore", "sales.csv", "--theme", ""}, "light,dark"},
		{"format list", []string{"render", "sales.csv", "--format", "svg,"}, "svg,svg|svg,png|svg,pdf|svg,json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := complete(t, tt.args...)
			sep := ","
			if strings.Contains(tt.want, "|") {
				sep = "|"
			}
			if strings.Join(got, sep) != tt.want {
				t.Errorf("completion = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			root := New(&bytes.Buffer{}, LogInfo).RootCommand()
			root.SetArgs([]string{"completion", shell})
			root.SetOut(&out)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("%s script does not mention %s", shell, appName)
			}
		})
	}
}
