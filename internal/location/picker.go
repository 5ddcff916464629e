package location

import (
	"context"
	"sync"
	"time"

	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/geocode"
	"github.com/localbasket/localbasket-backend/pkg/logger"
	"github.com/localbasket/localbasket-backend/pkg/metrics"
)

// PickerState is one phase of the map point-selection cycle.
type PickerState string

const (
	StateIdle            PickerState = "idle"
	StatePointSelected   PickerState = "point_selected"
	StateAddressPending  PickerState = "address_pending"
	StateAddressResolved PickerState = "address_resolved"
)

const defaultGeocodeTimeout = 5 * time.Second

// ReverseGeocoder resolves a point into human-readable address fields.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, point geo.DisplayPoint) (geocode.AddressFields, error)
}

// PickerCallbacks are fired as the selection cycle advances.
// OnLocationSelect fires as soon as a point is chosen; OnAddressFound fires
// only when the best-effort reverse geocode succeeds for that same point.
type PickerCallbacks struct {
	OnLocationSelect func(geo.StoragePoint)
	OnAddressFound   func(geocode.AddressFields, geo.StoragePoint)
}

// Picker drives the map interaction cycle independent of any rendering
// surface. Each selection bumps a generation counter; an in-flight geocode
// whose generation has been superseded discards its result, so a slow lookup
// never clobbers a newer selection.
type Picker struct {
	mu         sync.Mutex
	state      PickerState
	selected   *geo.StoragePoint
	resolved   *geocode.AddressFields
	generation uint64

	geocoder  ReverseGeocoder
	timeout   time.Duration
	callbacks PickerCallbacks
	geoStat   *metrics.GeoMetrics
	logg      *logger.Logger
}

// NewPicker builds a picker in the Idle state. A nil geocoder disables
// address resolution; selections still work.
func NewPicker(geocoder ReverseGeocoder, timeout time.Duration, callbacks PickerCallbacks, geoStat *metrics.GeoMetrics, logg *logger.Logger) *Picker {
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}
	return &Picker{
		state:     StateIdle,
		geocoder:  geocoder,
		timeout:   timeout,
		callbacks: callbacks,
		geoStat:   geoStat,
		logg:      logg,
	}
}

// State returns the current phase.
func (p *Picker) State() PickerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Selected returns the current point, if any, in storage order.
func (p *Picker) Selected() (geo.StoragePoint, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return geo.StoragePoint{}, false
	}
	return *p.selected, true
}

// Address returns the resolved address fields, if the cycle reached
// AddressResolved.
func (p *Picker) Address() (geocode.AddressFields, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved == nil {
		return geocode.AddressFields{}, false
	}
	return *p.resolved, true
}

// Reset returns the picker to Idle and invalidates any in-flight geocode.
func (p *Picker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.state = StateIdle
	p.selected = nil
	p.resolved = nil
}

// SelectPoint handles a map click. The point validates through the
// coordinate model before anything else happens; re-selection restarts the
// cycle.
func (p *Picker) SelectPoint(ctx context.Context, point geo.DisplayPoint) error {
	display, err := geo.ParseDisplay(point)
	if err != nil {
		return err
	}
	p.begin(ctx, display.Storage())
	return nil
}

// SelectDeviceLocation handles a browser geolocation result. A geolocation
// error is non-fatal: it is logged and the state is left unchanged.
func (p *Picker) SelectDeviceLocation(ctx context.Context, point geo.DisplayPoint, geoErr error) error {
	if geoErr != nil {
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", geoErr.Error()), "picker.device_location.failed")
		}
		return nil
	}
	return p.SelectPoint(ctx, point)
}

func (p *Picker) begin(ctx context.Context, storage geo.StoragePoint) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.selected = &storage
	p.resolved = nil
	p.state = StatePointSelected
	onSelect := p.callbacks.OnLocationSelect
	p.mu.Unlock()

	if onSelect != nil {
		onSelect(storage)
	}

	if p.geocoder == nil {
		return
	}

	p.mu.Lock()
	if p.generation == gen {
		p.state = StateAddressPending
	}
	p.mu.Unlock()

	go p.resolve(ctx, gen, storage)
}

func (p *Picker) resolve(ctx context.Context, gen uint64, storage geo.StoragePoint) {
	// Detach from the request context so an early client disconnect does
	// not abort the lookup; the timeout still bounds it.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	fields, err := p.geocoder.Reverse(rctx, storage.Display())

	p.mu.Lock()
	stale := gen != p.generation
	if !stale {
		if err != nil {
			// The point selection already succeeded; a failed lookup only
			// means no address label.
			p.state = StatePointSelected
		} else {
			p.resolved = &fields
			p.state = StateAddressResolved
		}
	}
	onFound := p.callbacks.OnAddressFound
	p.mu.Unlock()

	if err != nil {
		p.geoStat.IncGeocodeFailure()
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "picker.reverse_geocode.failed")
		}
		return
	}
	if stale {
		return
	}
	if onFound != nil {
		onFound(fields, storage)
	}
}
