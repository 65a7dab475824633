package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestFinanceAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "finance.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read alert rules: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("parse alert rules: %v", err)
	}
	if len(spec.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	seen := map[string]bool{}
	for _, group := range spec.Groups {
		for _, rule := range group.Rules {
			seen[rule.Alert] = true
			if rule.Expr == "" {
				t.Errorf("rule %s has empty expr", rule.Alert)
			}
			if rule.Labels["severity"] == "" {
				t.Errorf("rule %s missing severity label", rule.Alert)
			}
			if rule.Annotations["summary"] == "" {
				t.Errorf("rule %s missing summary annotation", rule.Alert)
			}
			if !strings.Contains(rule.Expr, "aquanav_") {
				t.Errorf("rule %s does not reference an application metric: %s", rule.Alert, rule.Expr)
			}
		}
	}

	for _, required := range []string{"HighHTTPErrorRate", "OverdueScanFailing"} {
		if !seen[required] {
			t.Errorf("expected alert rule %s to be defined", required)
		}
	}
}
