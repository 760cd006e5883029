package listing

import (
	"encoding/json"
	"testing"
)

func TestEmbeddedFieldsAreFlattened(t *testing.T) {
	attraction := TouristAttraction{
		Tourism: Tourism{
			Post: Post{ID: "p-1", Title: "Kasbah"},
			Type: TourismAttraction,
		},
		EntryFee: 20,
	}

	data, err := json.Marshal(attraction)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"id", "title", "type", "entryFee", "isActive"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected top-level key %q in %s", key, data)
		}
	}
	if _, ok := payload["Post"]; ok {
		t.Fatalf("embedded struct leaked as nested object: %s", data)
	}
}

func TestEnumValidation(t *testing.T) {
	if !InstitutionCoachingCenter.Valid() || InstitutionType("SCHOOL").Valid() {
		t.Fatal("unexpected InstitutionType validation")
	}
	if !TourismBank.Valid() || TourismType("").Valid() {
		t.Fatal("unexpected TourismType validation")
	}
	if !JobInternship.Valid() || !WorkHybrid.Valid() || WorkLocation("MOON").Valid() {
		t.Fatal("unexpected job enum validation")
	}
	if !CategoryJobs.Valid() || Category("business").Valid() {
		t.Fatal("unexpected Category validation")
	}
	if !RoleAdmin.Valid() || UserRole("root").Valid() {
		t.Fatal("unexpected UserRole validation")
	}
}
