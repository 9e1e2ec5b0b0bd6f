package utils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

func presentOn(families ...int) func(int) (bool, error) {
	return func(familyIndex int) (bool, error) {
		for _, family := range families {
			if family == familyIndex {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestSelectQueueFamiliesShared(t *testing.T) {
	flags := []core1_0.QueueFlags{0, core1_0.QueueGraphics, core1_0.QueueGraphics}

	indices, err := selectQueueFamilies(flags, presentOn(1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if !indices.IsComplete() {
		t.Fatal("expected complete indices")
	}
	if *indices.GraphicsFamily != 1 || *indices.PresentFamily != 1 {
		t.Errorf("expected family 1 for both, got %d and %d", *indices.GraphicsFamily, *indices.PresentFamily)
	}

	unique := indices.UniqueFamilies()
	if len(unique) != 1 || unique[0] != 1 {
		t.Errorf("expected one unique family, got %v", unique)
	}
}

func TestSelectQueueFamiliesSeparate(t *testing.T) {
	flags := []core1_0.QueueFlags{core1_0.QueueGraphics, 0}

	indices, err := selectQueueFamilies(flags, presentOn(1))
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	unique := indices.UniqueFamilies()
	if len(unique) != 2 || unique[0] != 0 || unique[1] != 1 {
		t.Errorf("expected graphics 0 then present 1, got %v", unique)
	}
}

func TestSelectQueueFamiliesIncomplete(t *testing.T) {
	indices, err := selectQueueFamilies([]core1_0.QueueFlags{0}, presentOn(0))
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if indices.IsComplete() {
		t.Error("a device without a graphics family should not be complete")
	}
}

func TestSelectQueueFamiliesError(t *testing.T) {
	failure := errors.New("surface lost")
	_, err := selectQueueFamilies([]core1_0.QueueFlags{core1_0.QueueGraphics}, func(int) (bool, error) {
		return false, failure
	})
	if !errors.Is(err, failure) {
		t.Errorf("expected the present query error, got %v", err)
	}
}
