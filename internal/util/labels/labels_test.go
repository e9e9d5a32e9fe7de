package labels

import "testing"

func TestNewLabelBuilder(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("alice").Build()

	if labels[KeyUser] != "alice" {
		t.Errorf("expected %s=alice, got %q", KeyUser, labels[KeyUser])
	}
	if labels[KeyManagedBy] != ManagedByKubedeploy {
		t.Errorf("expected %s=%q, got %q", KeyManagedBy, ManagedByKubedeploy, labels[KeyManagedBy])
	}
	if len(labels) != 2 {
		t.Errorf("expected 2 labels, got %d", len(labels))
	}
}

func TestLabelBuilder_Chain(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("alice").
		WithRole("slave").
		Build()

	want := map[string]string{
		KeyUser:      "alice",
		KeyManagedBy: ManagedByKubedeploy,
		KeyRole:      "slave",
	}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d: %v", len(want), len(labels), labels)
	}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, labels[k])
		}
	}
}

func TestBuild_ReturnsCopy(t *testing.T) {
	t.Parallel()
	lb := NewLabelBuilder("alice")
	first := lb.Build()
	first[KeyUser] = "mallory"

	if lb.Build()[KeyUser] != "alice" {
		t.Error("mutating a built map must not affect the builder")
	}
}
