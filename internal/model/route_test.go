package model

import "testing"

// TestVehicleClassHeavyVehicle tests the fixed heavy-vehicle gating set.
func TestVehicleClassHeavyVehicle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		class VehicleClass
		want  bool
	}{
		{VehicleClassCar, false},
		{VehicleClassMediumGoods, true},
		{VehicleClassHeavyGoods, true},
		{VehicleClassBus, true},
		{VehicleClass("bicycle"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.class), func(t *testing.T) {
			t.Parallel()

			if got := tt.class.HeavyVehicle(); got != tt.want {
				t.Errorf("HeavyVehicle(%q) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

// TestRouteContextImmutability tests that the constructor copies its inputs
// and that accessors return defensive copies.
func TestRouteContextImmutability(t *testing.T) {
	t.Parallel()

	t.Run("constructor copies input slices", func(t *testing.T) {
		t.Parallel()

		points := []Point{{Lat: 12.97, Lng: 77.59}, {Lat: 13.08, Lng: 80.27}}
		rc := NewRouteContext(points, nil, "Bangalore", "Chennai", 350, 360, VehicleDescriptor{Class: VehicleClassCar})

		points[0] = Point{Lat: 0, Lng: 0}

		if got := rc.Start(); got.Lat != 12.97 {
			t.Errorf("Start().Lat = %v, want 12.97 (input mutation leaked in)", got.Lat)
		}
	})

	t.Run("accessor returns a copy", func(t *testing.T) {
		t.Parallel()

		rc := NewRouteContext([]Point{{Lat: 1, Lng: 2}}, nil, "", "", 0, 0, VehicleDescriptor{})

		got := rc.Points()
		got[0] = Point{Lat: 99, Lng: 99}

		if rc.Start().Lat != 1 {
			t.Error("mutating Points() result modified the RouteContext")
		}
	})

	t.Run("empty route has zero endpoints", func(t *testing.T) {
		t.Parallel()

		rc := NewRouteContext(nil, nil, "", "", 0, 0, VehicleDescriptor{})

		if got := rc.Start(); got != (Point{}) {
			t.Errorf("Start() = %v, want zero point", got)
		}
		if got := rc.End(); got != (Point{}) {
			t.Errorf("End() = %v, want zero point", got)
		}
	})
}

// TestPointValid tests coordinate range validation.
func TestPointValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"valid", Point{Lat: 28.61, Lng: 77.21}, true},
		{"lat too high", Point{Lat: 91, Lng: 0}, false},
		{"lng too low", Point{Lat: 0, Lng: -181}, false},
		{"boundary", Point{Lat: -90, Lng: 180}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.point.Valid(); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}
