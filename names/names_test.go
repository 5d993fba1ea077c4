package names

import "testing"

func TestTableInternAssignsStableIncreasingIDs(t *testing.T) {
	table := NewTable(0)

	want := []string{"Position", "Velocity", "Rotation", "Name", "Health"}
	got := make([]int, len(want))

	for i, name := range want {
		id, err := table.Intern(name)
		if err != nil {
			t.Fatalf("Intern(%q): %v", name, err)
		}
		got[i] = int(id)
		if int(id) != i+1 {
			t.Errorf("Intern(%q) = %d, want %d", name, id, i+1)
		}
	}

	for i, name := range want {
		id, err := table.Intern(name)
		if err != nil {
			t.Fatalf("re-Intern(%q): %v", name, err)
		}
		if int(id) != got[i] {
			t.Errorf("re-Intern(%q) = %d, want %d (not stable)", name, id, got[i])
		}
	}
}

func TestTableLookupMissing(t *testing.T) {
	table := NewTable(0)
	if _, ok := table.Lookup("nonexistent"); ok {
		t.Errorf("Lookup(nonexistent) found an entry in an empty table")
	}
}

func TestTableNameRoundTrip(t *testing.T) {
	table := NewTable(0)
	id, err := table.Intern("Position")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	name, ok := table.Name(id)
	if !ok || name != "Position" {
		t.Errorf("Name(%d) = %q, %v, want %q, true", id, name, ok, "Position")
	}
}

func TestTableCapacity(t *testing.T) {
	const capacity = 3 // "id" plus two real names
	table := NewTable(capacity)

	if _, err := table.Intern("Position"); err != nil {
		t.Fatalf("Intern(Position): %v", err)
	}
	if _, err := table.Intern("Velocity"); err != nil {
		t.Fatalf("Intern(Velocity): %v", err)
	}
	if _, err := table.Intern("Rotation"); err == nil {
		t.Errorf("Intern(Rotation) at capacity: expected error, got none")
	}

	// Re-interning an already-known name must still succeed at capacity.
	if _, err := table.Intern("Position"); err != nil {
		t.Errorf("re-Intern(Position) at capacity: %v", err)
	}
}
