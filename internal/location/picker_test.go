package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/geocode"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	handler func(geo.DisplayPoint) (geocode.AddressFields, error)
	calls   int
}

func (f *fakeGeocoder) Reverse(_ context.Context, point geo.DisplayPoint) (geocode.AddressFields, error) {
	f.mu.Lock()
	f.calls++
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return geocode.AddressFields{}, errors.New("no handler")
	}
	return handler(point)
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestPickerResolvesAddressAfterSelection(t *testing.T) {
	geocoder := &fakeGeocoder{handler: func(geo.DisplayPoint) (geocode.AddressFields, error) {
		return geocode.AddressFields{Address: "Rue de Rivoli", City: "Paris", Pincode: "75001"}, nil
	}}

	var selected geo.StoragePoint
	found := make(chan struct{})
	picker := NewPicker(geocoder, time.Second, PickerCallbacks{
		OnLocationSelect: func(p geo.StoragePoint) { selected = p },
		OnAddressFound: func(geocode.AddressFields, geo.StoragePoint) {
			close(found)
		},
	}, nil, nil)

	if err := picker.SelectPoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("select point: %v", err)
	}
	if selected.Lng != 2.3522 || selected.Lat != 48.8566 {
		t.Fatalf("selection callback got %+v", selected)
	}

	waitFor(t, found, "address resolution")

	if picker.State() != StateAddressResolved {
		t.Fatalf("expected AddressResolved, got %s", picker.State())
	}
	fields, ok := picker.Address()
	if !ok || fields.City != "Paris" {
		t.Fatalf("unexpected address %+v (ok=%v)", fields, ok)
	}
}

func TestPickerRejectsOutOfRangePoint(t *testing.T) {
	picker := NewPicker(nil, time.Second, PickerCallbacks{}, nil, nil)

	err := picker.SelectPoint(context.Background(), geo.DisplayPoint{Lat: 100, Lng: 2.3522})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if picker.State() != StateIdle {
		t.Fatalf("expected Idle after rejected selection, got %s", picker.State())
	}
}

func TestPickerDeviceLocationErrorLeavesStateUnchanged(t *testing.T) {
	picker := NewPicker(nil, time.Second, PickerCallbacks{}, nil, nil)

	if err := picker.SelectPoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("select point: %v", err)
	}
	if err := picker.SelectDeviceLocation(context.Background(), geo.DisplayPoint{}, errors.New("permission denied")); err != nil {
		t.Fatalf("device location error should be non-fatal, got %v", err)
	}

	if picker.State() != StatePointSelected {
		t.Fatalf("expected PointSelected, got %s", picker.State())
	}
	if point, ok := picker.Selected(); !ok || point.Lng != 2.3522 {
		t.Fatalf("selection lost: %+v (ok=%v)", point, ok)
	}
}

func TestPickerGeocodeFailureKeepsSelection(t *testing.T) {
	failed := make(chan struct{})
	geocoder := &fakeGeocoder{handler: func(geo.DisplayPoint) (geocode.AddressFields, error) {
		defer close(failed)
		return geocode.AddressFields{}, errors.New("upstream down")
	}}
	picker := NewPicker(geocoder, time.Second, PickerCallbacks{}, nil, nil)

	if err := picker.SelectPoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("select point: %v", err)
	}
	waitFor(t, failed, "geocode failure")

	// The resolve goroutine updates state after the handler returns.
	deadline := time.Now().Add(2 * time.Second)
	for picker.State() == StateAddressPending {
		if time.Now().After(deadline) {
			t.Fatal("picker stuck in AddressPending")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if picker.State() != StatePointSelected {
		t.Fatalf("expected PointSelected after failed lookup, got %s", picker.State())
	}
	if _, ok := picker.Address(); ok {
		t.Fatal("no address should be recorded")
	}
	if _, ok := picker.Selected(); !ok {
		t.Fatal("selection must survive a failed lookup")
	}
}

func TestPickerStaleGeocodeDoesNotClobberNewerSelection(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var once sync.Once

	geocoder := &fakeGeocoder{}
	geocoder.handler = func(point geo.DisplayPoint) (geocode.AddressFields, error) {
		if point.Lat == 48.8566 {
			once.Do(func() { close(firstStarted) })
			<-releaseFirst
			return geocode.AddressFields{Address: "stale result"}, nil
		}
		return geocode.AddressFields{Address: "Baker Street", City: "London"}, nil
	}

	var mu sync.Mutex
	var foundAddresses []string
	secondFound := make(chan struct{})
	picker := NewPicker(geocoder, 5*time.Second, PickerCallbacks{
		OnAddressFound: func(fields geocode.AddressFields, _ geo.StoragePoint) {
			mu.Lock()
			foundAddresses = append(foundAddresses, fields.Address)
			mu.Unlock()
			if fields.City == "London" {
				close(secondFound)
			}
		},
	}, nil, nil)

	ctx := context.Background()
	if err := picker.SelectPoint(ctx, geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("first selection: %v", err)
	}
	waitFor(t, firstStarted, "first geocode to start")

	if err := picker.SelectPoint(ctx, geo.DisplayPoint{Lat: 51.5237, Lng: -0.1586}); err != nil {
		t.Fatalf("second selection: %v", err)
	}
	waitFor(t, secondFound, "second address resolution")

	// Release the stale lookup and give it a moment to (not) apply.
	close(releaseFirst)
	time.Sleep(50 * time.Millisecond)

	if picker.State() != StateAddressResolved {
		t.Fatalf("expected AddressResolved, got %s", picker.State())
	}
	fields, ok := picker.Address()
	if !ok || fields.City != "London" {
		t.Fatalf("stale geocode clobbered the newer selection: %+v", fields)
	}
	point, ok := picker.Selected()
	if !ok || fmt.Sprintf("%.4f", point.Lat) != "51.5237" {
		t.Fatalf("unexpected selected point %+v", point)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, addr := range foundAddresses {
		if addr == "stale result" {
			t.Fatal("stale geocode fired OnAddressFound")
		}
	}
}

func TestPickerResetReturnsToIdle(t *testing.T) {
	picker := NewPicker(nil, time.Second, PickerCallbacks{}, nil, nil)

	if err := picker.SelectPoint(context.Background(), geo.DisplayPoint{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("select point: %v", err)
	}
	picker.Reset()

	if picker.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", picker.State())
	}
	if _, ok := picker.Selected(); ok {
		t.Fatal("selection should be cleared")
	}
}
