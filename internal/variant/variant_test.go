package variant

import "testing"

func TestAllVariantsValidate(t *testing.T) {
	variants := All()
	if len(variants) != 4 {
		t.Fatalf("registered %d variants, want 4", len(variants))
	}

	for _, v := range variants {
		t.Run(v.Name, func(t *testing.T) {
			if err := v.Validate(); err != nil {
				t.Errorf("variant invalid: %v", err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	v, err := Lookup("verdant")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if v.Forest == nil {
		t.Error("verdant should carry forest overlay settings")
	}
	if v.Forest.Patches != 22 {
		t.Errorf("verdant forest patches = %d, want 22", v.Forest.Patches)
	}

	if _, err := Lookup("nope"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	want := []string{"alpine", "atlas", "highland", "verdant"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestOnlyVerdantHasForest(t *testing.T) {
	for _, v := range All() {
		hasForest := v.Forest != nil
		if v.Name == "verdant" && !hasForest {
			t.Error("verdant lost its forest overlay")
		}
		if v.Name != "verdant" && hasForest {
			t.Errorf("variant %s unexpectedly carries a forest overlay", v.Name)
		}
	}
}

func TestClosedPartitionVariantsHaveNoGaps(t *testing.T) {
	// atlas and verdant use the flat rule set: every quantized elevation
	// must map to a band.
	for _, name := range []string{"atlas", "verdant"} {
		v, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", name, err)
		}
		for elev := v.Terrain.ElevMin; elev <= v.Terrain.ElevMax; elev += v.Terrain.Step {
			if _, ok := v.Bands.Classify(elev); !ok {
				t.Errorf("variant %s leaves elevation %g unmapped", name, elev)
			}
		}
	}
}

func TestRampVariantsCoverQuantizedRange(t *testing.T) {
	for _, name := range []string{"highland", "alpine"} {
		v, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", name, err)
		}
		for elev := v.Terrain.ElevMin; elev <= v.Terrain.ElevMax; elev += v.Terrain.Step {
			if _, ok := v.Bands.Classify(elev); !ok {
				t.Errorf("variant %s leaves quantized elevation %g unmapped", name, elev)
			}
		}
	}
}
