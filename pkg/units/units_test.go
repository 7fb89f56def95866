package units

import "testing"

func TestWaterContentValidity(t *testing.T) {
	for i := 0; i <= 100; i++ {
		vwc := WaterContentFromPercent(float64(i))
		if !vwc.Valid() {
			t.Errorf("water content %d %% should be valid", i)
		}
		if vwc.Percent() != float64(i) {
			t.Errorf("Percent: got %v, want %v", vwc.Percent(), float64(i))
		}
	}

	if WaterContentFromPercent(-0.5).Valid() {
		t.Error("-0.5 % should be invalid")
	}
	if WaterContentFromPercent(100.01).Valid() {
		t.Error("100.01 % should be invalid")
	}
}

func TestPermittivityValidity(t *testing.T) {
	if !PermittivityFromRatio(1.0).Valid() {
		t.Error("ratio 1.0 should be valid")
	}
	if !PermittivityFromRatio(15.2).Valid() {
		t.Error("ratio 15.2 should be valid")
	}
	if PermittivityFromRatio(0.99).Valid() {
		t.Error("ratio 0.99 should be invalid")
	}
	if PermittivityFromRatio(0).Valid() {
		t.Error("ratio 0 should be invalid")
	}

	if MinPermittivity().Ratio() != MinPermittivityRatio {
		t.Errorf("MinPermittivity: got %v, want %v", MinPermittivity().Ratio(), MinPermittivityRatio)
	}
}

func TestTemperatureRoundTrip(t *testing.T) {
	temp := TemperatureFromDegreeCelsius(-40.0)
	if temp.DegreeCelsius() != -40.0 {
		t.Errorf("DegreeCelsius: got %v, want -40.0", temp.DegreeCelsius())
	}
}

func TestStringFormats(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{TemperatureFromDegreeCelsius(23.45).String(), "23.45 °C"},
		{TemperatureFromDegreeCelsius(-40).String(), "-40.00 °C"},
		{WaterContentFromPercent(34.4).String(), "34.40 %"},
		{PermittivityFromRatio(15.2).String(), "15.20"},
		{RawCounts(1234).String(), "1234"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String: got %q, want %q", tt.got, tt.want)
		}
	}
}
