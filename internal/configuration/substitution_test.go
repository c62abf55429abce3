package configuration

import (
	"strings"
	"testing"
)

func TestGetYAMLValue(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]interface{}
		path      string
		want      interface{}
		wantError bool
	}{
		{
			name: "simple top-level access",
			data: map[string]interface{}{
				"token": "secret123",
			},
			path: "token",
			want: "secret123",
		},
		{
			name: "nested access",
			data: map[string]interface{}{
				"credentials": map[string]interface{}{
					"token": "nested-secret",
				},
			},
			path: "credentials.token",
			want: "nested-secret",
		},
		{
			name: "path not found",
			data: map[string]interface{}{
				"token": "secret",
			},
			path:      "nonexistent",
			wantError: true,
		},
		{
			name: "navigating into scalar",
			data: map[string]interface{}{
				"token": "secret",
			},
			path:      "token.inner",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetYAMLValue(tt.data, tt.path)

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSubstituteVariables(t *testing.T) {
	t.Setenv("COREKIT_TEST_TOKEN", "token-value")
	t.Setenv("COREKIT_TEST_USER", "bot")

	ctx := NewSubstitutionContext()

	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{
			name:  "no placeholders",
			input: "plain-value",
			want:  "plain-value",
		},
		{
			name:  "single environment variable",
			input: "${COREKIT_TEST_TOKEN}",
			want:  "token-value",
		},
		{
			name:  "embedded environment variable",
			input: "Bearer ${COREKIT_TEST_TOKEN}",
			want:  "Bearer token-value",
		},
		{
			name:  "multiple environment variables",
			input: "${COREKIT_TEST_USER}:${COREKIT_TEST_TOKEN}",
			want:  "bot:token-value",
		},
		{
			name:      "unset environment variable",
			input:     "${COREKIT_TEST_UNSET_VARIABLE}",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctx.SubstituteVariables(tt.input)

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSubstituteInConfig(t *testing.T) {
	t.Setenv("COREKIT_TEST_TOKEN", "gh-token")
	t.Setenv("COREKIT_TEST_WEBHOOK", "https://hooks.example.com/T000")

	config := &Config{
		TargetActor: &TargetActor{
			Name:  "corekit-bot",
			Email: "bot@example.com",
			Token: "${COREKIT_TEST_TOKEN}",
		},
		Notify: &Notify{
			WebhookURL: "${COREKIT_TEST_WEBHOOK}",
		},
	}

	if err := NewSubstitutionContext().SubstituteInConfig(config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.TargetActor.Token != "gh-token" {
		t.Errorf("expected substituted token, got %q", config.TargetActor.Token)
	}
	if config.Notify.WebhookURL != "https://hooks.example.com/T000" {
		t.Errorf("expected substituted webhook URL, got %q", config.Notify.WebhookURL)
	}
	// Fields without placeholders stay untouched
	if config.TargetActor.Name != "corekit-bot" {
		t.Errorf("expected name to stay unchanged, got %q", config.TargetActor.Name)
	}
}

func TestSubstituteInConfigUnsetVariable(t *testing.T) {
	config := &Config{
		TargetActor: &TargetActor{
			Token: "${COREKIT_TEST_DEFINITELY_UNSET}",
		},
	}

	err := NewSubstitutionContext().SubstituteInConfig(config)
	if err == nil {
		t.Fatalf("expected error but got none")
	}
	if !strings.Contains(err.Error(), "COREKIT_TEST_DEFINITELY_UNSET") {
		t.Errorf("expected error to name the variable, got: %v", err)
	}
}

func TestResolveSOPSReferenceFormat(t *testing.T) {
	ctx := NewSubstitutionContext()

	tests := []struct {
		name       string
		expression string
	}{
		{"missing closing bracket", "SOPS[secrets.yml"},
		{"missing yaml path", "SOPS[secrets.yml]"},
		{"missing dot after bracket", "SOPS[secrets.yml]token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ctx.resolveSOPSReference(tt.expression); err == nil {
				t.Fatalf("expected error but got none")
			}
		})
	}
}
