package colordistance

import "testing"

func TestCIEDE2000(t *testing.T) {
	same, err := CIEDE2000("#B0152B", "b0152b")
	if err != nil {
		t.Fatalf("distance error = %v", err)
	}
	if same != 0 {
		t.Fatalf("identical colors should have zero distance, got %f", same)
	}

	near, err := CIEDE2000("#B0152B", "#B2172D")
	if err != nil {
		t.Fatalf("distance error = %v", err)
	}
	far, err := CIEDE2000("#B0152B", "#F4D3D3")
	if err != nil {
		t.Fatalf("distance error = %v", err)
	}
	if near <= 0 || near > 3 {
		t.Fatalf("near shades should be barely distinguishable, got %f", near)
	}
	if far < 25 {
		t.Fatalf("red vs pale pink should be far apart, got %f", far)
	}

	if _, err := CIEDE2000("#GGGGGG", "#000000"); err == nil {
		t.Fatalf("invalid hex should fail")
	}
}
