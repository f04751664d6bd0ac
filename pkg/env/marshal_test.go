package env

import (
	"strings"
	"testing"
	"time"
)

type sampleConfig struct {
	Name     string        `env:"APP_NAME"`
	Count    int           `env:"APP_COUNT"`
	Ratio    float64       `env:"APP_RATIO"`
	Enabled  bool          `env:"APP_ENABLED"`
	Timeout  time.Duration `env:"APP_TIMEOUT"`
	Tags     []string      `env:"APP_TAGS"`
	Untagged string
	skipped  string `env:"APP_SKIPPED"`
}

func TestMarshalEnv(t *testing.T) {
	out, err := MarshalEnv(&sampleConfig{
		Name:     "guardian",
		Count:    3,
		Ratio:    0.15,
		Enabled:  true,
		Timeout:  10 * time.Second,
		Tags:     []string{"energy", "water"},
		Untagged: "ignored",
		skipped:  "ignored",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"APP_NAME=guardian",
		"APP_COUNT=3",
		"APP_RATIO=0.15",
		"APP_ENABLED=true",
		"APP_TIMEOUT=10s",
		"APP_TAGS=energy,water",
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("missing line %q in output:\n%s", line, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("untagged or unexported fields leaked into output:\n%s", out)
	}
}

func TestMarshalEnvSkipsZeroValues(t *testing.T) {
	out, err := MarshalEnv(&sampleConfig{Name: "guardian"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "APP_NAME=guardian\n" {
		t.Errorf("expected only the set field, got %q", out)
	}
}

func TestMarshalEnvRejectsNonStruct(t *testing.T) {
	if _, err := MarshalEnv("nope"); err == nil {
		t.Error("expected an error for a non-struct argument")
	}
}
