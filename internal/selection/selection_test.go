package selection

import (
	"reflect"
	"testing"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

func TestEnsureDefaultOnlyOnce(t *testing.T) {
	f := New()
	if f.Initialized() {
		t.Fatal("new filter must not be initialized")
	}
	if !f.EnsureDefault([]models.ID{"3", "1"}) {
		t.Fatal("first EnsureDefault must seed")
	}
	if f.EnsureDefault([]models.ID{"9"}) {
		t.Fatal("second EnsureDefault must be ignored")
	}
	if got := f.IDs(); !reflect.DeepEqual(got, []models.ID{"3", "1"}) {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestAddRemoveReplace(t *testing.T) {
	f := New()
	f.Add("1", "2", "2", "", "3")
	if got := f.IDs(); !reflect.DeepEqual(got, []models.ID{"1", "2", "3"}) {
		t.Fatalf("add: got %v", got)
	}
	f.Remove("2", "404")
	if got := f.IDs(); !reflect.DeepEqual(got, []models.ID{"1", "3"}) {
		t.Fatalf("remove: got %v", got)
	}
	if f.Contains("2") || !f.Contains("3") {
		t.Fatal("contains out of sync with ids")
	}
	f.Replace([]models.ID{"7"})
	if got := f.IDs(); !reflect.DeepEqual(got, []models.ID{"7"}) || f.Contains("1") {
		t.Fatalf("replace: got %v", got)
	}
	f.Replace(nil)
	if f.Len() != 0 || !f.Initialized() {
		t.Fatal("empty replace keeps the filter initialized and empty")
	}
	if f.EnsureDefault([]models.ID{"1"}) {
		t.Fatal("an emptied selection must not be reseeded")
	}
}

func TestIDsIsACopy(t *testing.T) {
	f := New()
	f.Add("1", "2")
	ids := f.IDs()
	ids[0] = "x"
	if f.IDs()[0] != "1" {
		t.Fatal("IDs must not expose internal state")
	}
}

func TestResetAllowsReseed(t *testing.T) {
	f := New()
	f.EnsureDefault([]models.ID{"1", "2"})
	f.Reset()
	if f.Len() != 0 || f.Initialized() || f.Contains("1") {
		t.Fatal("reset must clear ids and the seeded flag")
	}
	if !f.EnsureDefault([]models.ID{"9"}) || !reflect.DeepEqual(f.IDs(), []models.ID{"9"}) {
		t.Fatalf("reseed after reset: %v", f.IDs())
	}
}
