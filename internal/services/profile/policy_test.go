package profile

import (
	"testing"

	"github.com/benvon/profile-sync/internal/models"
)

func stringPtr(s string) *string {
	return &s
}

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rule      Rule
		incoming  models.Optional[string]
		current   *string
		wantWrite bool
		want      models.Optional[string]
	}{
		{
			name:      "refresh writes non-empty value over existing",
			rule:      RuleRefreshIfPresent,
			incoming:  models.Some("new"),
			current:   stringPtr("old"),
			wantWrite: true,
			want:      models.Some("new"),
		},
		{
			name:     "refresh ignores empty value",
			rule:     RuleRefreshIfPresent,
			incoming: models.Some(""),
			current:  stringPtr("old"),
		},
		{
			name:     "refresh ignores absent value",
			rule:     RuleRefreshIfPresent,
			incoming: models.Optional[string]{},
			current:  stringPtr("old"),
		},
		{
			name:     "refresh ignores null",
			rule:     RuleRefreshIfPresent,
			incoming: models.Null[string](),
			current:  stringPtr("old"),
		},
		{
			name:      "fill writes when current is nil",
			rule:      RuleFillIfEmpty,
			incoming:  models.Some("Jane Doe"),
			current:   nil,
			wantWrite: true,
			want:      models.Some("Jane Doe"),
		},
		{
			name:      "fill writes when current is empty string",
			rule:      RuleFillIfEmpty,
			incoming:  models.Some("Jane Doe"),
			current:   stringPtr(""),
			wantWrite: true,
			want:      models.Some("Jane Doe"),
		},
		{
			name:     "fill keeps existing value",
			rule:     RuleFillIfEmpty,
			incoming: models.Some("Alicia"),
			current:  stringPtr("Alice"),
		},
		{
			name:     "fill ignores empty incoming",
			rule:     RuleFillIfEmpty,
			incoming: models.Some(""),
			current:  nil,
		},
		{
			name:      "verbatim writes null",
			rule:      RuleVerbatim,
			incoming:  models.Null[string](),
			current:   stringPtr("http://x/pic.png"),
			wantWrite: true,
			want:      models.Null[string](),
		},
		{
			name:      "verbatim writes empty string",
			rule:      RuleVerbatim,
			incoming:  models.Some(""),
			current:   stringPtr("Alice"),
			wantWrite: true,
			want:      models.Some(""),
		},
		{
			name:     "verbatim skips absent",
			rule:     RuleVerbatim,
			incoming: models.Optional[string]{},
			current:  stringPtr("Alice"),
		},
		{
			name:     "skip never writes",
			rule:     RuleSkip,
			incoming: models.Some("value"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, write := Decide(tt.rule, tt.incoming, tt.current)
			if write != tt.wantWrite {
				t.Fatalf("Expected write=%v, got %v", tt.wantWrite, write)
			}
			if write && got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestDecide_Bool(t *testing.T) {
	t.Parallel()

	current := true
	got, write := Decide(RuleVerbatim, models.Some(false), &current)
	if !write {
		t.Fatal("Expected verbatim bool to be written")
	}
	if !got.Valid || got.Value {
		t.Errorf("Expected false to be written, got %+v", got)
	}
}

func TestPolicyTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field    models.Field
		wantSync Rule
		wantEdit Rule
	}{
		{models.FieldEmail, RuleRefreshIfPresent, RuleSkip},
		{models.FieldFullName, RuleFillIfEmpty, RuleVerbatim},
		{models.FieldProfilePicture, RuleFillIfEmpty, RuleVerbatim},
		{models.FieldFirstName, RuleRefreshIfPresent, RuleSkip},
		{models.FieldLastName, RuleRefreshIfPresent, RuleSkip},
		{models.FieldProviderID, RuleRefreshIfPresent, RuleSkip},
		{models.FieldAuthProvider, RuleRefreshIfPresent, RuleSkip},
		{models.FieldEmailVerified, RuleSkip, RuleVerbatim},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			t.Parallel()

			if got := SyncRule(tt.field); got != tt.wantSync {
				t.Errorf("Expected sync rule %s, got %s", tt.wantSync, got)
			}
			if got := EditRule(tt.field); got != tt.wantEdit {
				t.Errorf("Expected edit rule %s, got %s", tt.wantEdit, got)
			}
		})
	}
}

func TestPolicyTable_CoversEveryStringField(t *testing.T) {
	t.Parallel()

	var fields models.ProfileFields
	for _, p := range policies {
		if fields.StringField(p.field) == nil {
			t.Errorf("Policy field %s has no string column", p.field)
		}
		if p.event == nil || p.current == nil {
			t.Errorf("Policy field %s is missing accessors", p.field)
		}
		if p.edit != RuleSkip && p.userEdit == nil {
			t.Errorf("Policy field %s has an edit rule but no edit accessor", p.field)
		}
	}
}
